package worker

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"scirel.ai/deppath/pipeline"
	"scirel.ai/deppath/tasks"
)

// recorder collects the names of the mocked methods in call order and fails
// the ones listed in fail.
type recorder struct {
	calls []string
	fail  map[string]bool
}

func (r *recorder) call(name string) error {
	r.calls = append(r.calls, name)
	if r.fail[name] {
		return fmt.Errorf("mock: %s failed", name)
	}
	return nil
}

type redisMock struct {
	*recorder
	article        tasks.ArticleTask
	job            tasks.JobTask
	cancelMessages []string
}

func (mock *redisMock) close() {}

func (mock *redisMock) getArticleTask(redisKey string) (*tasks.ArticleTask, error) {
	if err := mock.call("getArticleTask"); err != nil {
		return nil, err
	}
	article := mock.article
	return &article, nil
}

func (mock *redisMock) getJobTask(task *Task) (*tasks.JobTask, error) {
	if err := mock.call("getJobTask"); err != nil {
		return nil, err
	}
	job := mock.job
	return &job, nil
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	return mock.call("onTaskStarted")
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	mock.cancelMessages = append(mock.cancelMessages, errorMessages...)
	return mock.call("onTaskCancelled")
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	return mock.call("onTaskExceededRetries")
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	return mock.call("onTaskFailedWithError")
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	return mock.call("onTaskComplete")
}

type rmqMock struct {
	*recorder
	pinged []Message
}

func (mock *rmqMock) close() {}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) pingSequencer(task *Task, message Message) error {
	mock.pinged = append(mock.pinged, message)
	return mock.call("pingSequencer")
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return mock.call("acknowledgeDelivery")
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, log *zerolog.Logger) {
	_ = mock.call("rejectDelivery")
}

type s3Mock struct {
	*recorder
	article []byte
	pairs   []byte
	saved   map[string]string
}

func (mock *s3Mock) close() {}

func (mock *s3Mock) getArticleInputs(task *Task) ([]byte, []byte, error) {
	if err := mock.call("getArticleInputs"); err != nil {
		return nil, nil, err
	}
	return mock.article, mock.pairs, nil
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	if err := mock.call("saveResultsFile"); err != nil {
		return err
	}
	if mock.saved == nil {
		mock.saved = make(map[string]string)
	}
	mock.saved[getResultsFileKey(task)] = result
	return nil
}

// pipelineMock answers with result, or closes the channel when "pipeline"
// is set to fail.
func pipelineMock(rec *recorder, result string) pipeline.Pipeline {
	return func(request pipeline.Request) <-chan string {
		ch := make(chan string, 1)
		if rec.call("pipeline") == nil {
			ch <- result
		}
		close(ch)
		return ch
	}
}
