// Package s3client moves article inputs and results in and out of the
// object store.
package s3client

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"scirel.ai/deppath/logger"
)

type EnvironmentConfig struct {
	BucketName  string `envconfig:"DPE_STORAGE_CONTAINER_NAME" required:"true"`
	Env         string `envconfig:"DPE_ENV" default:"prod"`
	Region      string `envconfig:"DPE_AWS_REGION_NAME" required:"true"`
	AwsEndpoint string `envconfig:"DPE_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"DPE_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"DPE_AWS_ACCESS_KEY" default:""`
}

var ErrNoSession = errors.New("no S3 session")

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

type Client struct {
	env EnvironmentConfig

	mu   sync.Mutex
	sess *session.Session
}

func New() (*Client, error) {
	var env EnvironmentConfig
	if err := envconfig.Process("", &env); err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := &Client{env: env}
	if _, err := client.refresh(nil); err != nil {
		return nil, err
	}
	return client, nil
}

func (client *Client) Upload(data []byte, key string) (*s3manager.UploadOutput, error) {
	var output *s3manager.UploadOutput
	err := client.withSession(func(sess *session.Session) error {
		var err error
		output, err = client.upload(sess, data, key)
		return err
	})
	return output, err
}

func (client *Client) Download(key string) ([]byte, error) {
	var data []byte
	err := client.withSession(func(sess *session.Session) error {
		var err error
		data, err = client.download(sess, key)
		return err
	})
	return data, err
}

// Close drops the current session. The client refreshes it on next use.
func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.sess = nil
	clientLogger.Info().Msg("Closing client")
}

// withSession runs call with the current session and retries it once with
// a fresh session if it fails.
func (client *Client) withSession(call func(sess *session.Session) error) error {
	sess, err := client.current()
	if err != nil {
		return err
	}
	err = call(sess)
	if err == nil {
		return nil
	}
	clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
	if sess, err = client.refresh(sess); err != nil {
		return err
	}
	return call(sess)
}

func (client *Client) current() (*session.Session, error) {
	client.mu.Lock()
	sess := client.sess
	client.mu.Unlock()
	if sess != nil {
		return sess, nil
	}
	return client.refresh(nil)
}

// refresh replaces stale with a new session unless another caller already
// did.
func (client *Client) refresh(stale *session.Session) (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.sess != nil && client.sess != stale {
		return client.sess, nil
	}
	sess, err := client.acquireSession()
	if err != nil {
		client.sess = nil
		return nil, err
	}
	client.sess = sess
	return sess, nil
}

func (client *Client) bucketLoggers(key string) (zerolog.Logger, zerolog.Logger) {
	l := clientLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
	sdk := sdkLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
	return l, sdk
}

func (client *Client) upload(sess *session.Session, data []byte, key string) (*s3manager.UploadOutput, error) {
	l, sdk := client.bucketLoggers(key)
	uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: sdkAdapter{sdk}}))
	l.Debug().Int("bytes", len(data)).Msg("Uploading the file")
	return uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(client.env.BucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
}

func (client *Client) download(sess *session.Session, key string) ([]byte, error) {
	l, sdk := client.bucketLoggers(key)
	downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: sdkAdapter{sdk}}))
	buf := aws.NewWriteAtBuffer([]byte{})

	l.Debug().Msg("Downloading file")
	size, err := downloader.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(client.env.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		l.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	l.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

// acquireSession tries the instance role first, then the static
// credentials from the environment.
func (client *Client) acquireSession() (*session.Session, error) {
	sess, err := session.NewSession(client.instanceConfig())
	if err == nil {
		if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err == nil {
			clientLogger.Info().Msg("S3 session successfully initialized using EC2")
			return sess, nil
		}
	}
	clientLogger.Info().Err(err).Msg("Could not initialize S3 session using EC2, trying env credentials")

	cfg, err := client.envConfig()
	if err != nil {
		return nil, err
	}
	sess, err = session.NewSession(cfg)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return sess, nil
}

func (client *Client) instanceConfig() *aws.Config {
	return &aws.Config{
		Region:     aws.String(client.env.Region),
		MaxRetries: aws.Int(4),
		LogLevel:   aws.LogLevel(aws.LogDebug),
	}
}

func (client *Client) envConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(client.env.AccessKeyID, client.env.AccessKey, "")
	if _, err := creds.Get(); err != nil {
		clientLogger.Error().Err(err).Msg("Error with credentials from environment")
		return nil, err
	}
	cfg := aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(4).
		WithCredentials(creds).
		WithLogLevel(aws.LogDebug)
	if client.env.Env == "dev" && client.env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

type sdkAdapter struct {
	log zerolog.Logger
}

func (a sdkAdapter) Log(v ...interface{}) {
	a.log.Debug().Msg(fmt.Sprint(v...))
}
