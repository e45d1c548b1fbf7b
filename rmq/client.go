// Package rmq consumes article task messages and notifies the sequencer.
package rmq

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"scirel.ai/deppath/logger"
)

type Config struct {
	Host                    string `envconfig:"DPE_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"DPE_RMQ_PORT" required:"true"`
	Username                string `envconfig:"DPE_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"DPE_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"DPE_RMQ_DEFAULT_EXCHANGE" default:"deppath-default-exchange"`
	MaxParallelRequestCount int    `envconfig:"DPE_MQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TaskQueue               string `envconfig:"DPE_TASK_QUEUE" required:"true"`
	SequencerTaskQueue      string `envconfig:"DPE_SEQUENCER_TASK_QUEUE" required:"true"`
}

func (config Config) url() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	log            zerolog.Logger
}

// NewClient opens separate connections for consuming the task queue and for
// publishing to the sequencer.
func NewClient() (*Client, error) {
	rmqLogger := logger.NewLogger("RMQ client")
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		rmqLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	respConn, respChannel, err := dial(config.url())
	if err != nil {
		return nil, fmt.Errorf("response connection: %w", err)
	}
	reqConn, reqChannel, err := dial(config.url())
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("request connection: %w", err)
	}

	deliveries, err := consume(reqChannel, config)
	if err != nil {
		_ = respConn.Close()
		_ = reqConn.Close()
		return nil, err
	}
	rmqLogger.Info().
		Str("queue", config.TaskQueue).
		Int("prefetch", config.MaxParallelRequestCount).
		Msg("Consuming task queue")

	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChannel.NotifyClose(make(chan *amqp.Error)),
		RespChanErrors: respChannel.NotifyClose(make(chan *amqp.Error)),
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		log:            rmqLogger,
	}, nil
}

func consume(ch *amqp.Channel, config Config) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclarePassive(
		config.TaskQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", config.TaskQueue, err)
	}
	if err := ch.QueueBind(q.Name, q.Name, config.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind %s: %w", q.Name, err)
	}
	if err := ch.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	return deliveries, nil
}

func (c *Client) SendMessageToSequencer(msg amqp.Publishing) error {
	c.log.Debug().Str("queue", c.config.SequencerTaskQueue).Msg("Publishing to sequencer")
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.SequencerTaskQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
