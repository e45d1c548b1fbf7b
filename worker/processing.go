package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"scirel.ai/deppath/pipeline"
	"scirel.ai/deppath/tasks"
	"scirel.ai/deppath/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery    *amqp.Delivery
	articleTask *tasks.ArticleTask
	message     *Message
	redisKey    string
	log         *zerolog.Logger
}

var errEmptyResult = errors.New("pipeline channel was closed before returning anything")

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	rejectLogger := worker.dpeLogger.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(delivery)
	if err != nil {
		rejectLogger.Err(err).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingSequencer(task, *task.message); err != nil {
		task.log.Err(err).Msg("Got error while sending message to sequencer queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.log.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.log.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	articleTask, err := worker.redis.getArticleTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query article task for message, got error %w", err)
	}
	taskLogger := worker.dpeLogger.With().
		Str("tid", message.RedisKey).
		Str("title", articleTask.Title).
		Logger()
	return &Task{
		delivery:    delivery,
		articleTask: articleTask,
		redisKey:    message.RedisKey,
		message:     &message,
		log:         &taskLogger,
	}, nil
}

// processTask returns an error only when the message should be rejected.
// Pipeline failures are recorded on the task and the message is passed on.
func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.log.Err(err).Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.log.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.log.Err(err).Msg("Got error while running pipeline")
		return worker.redis.onTaskFailedWithError(task, err)
	}
	task.log.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.log.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.log.Info().Msgf("Processing message from RMQ, attempt # %d", task.articleTask.TaskStatuses.DependencyPaths.Attempts)

	article, pairs, err := worker.s3.getArticleInputs(task)
	if err != nil {
		task.log.Err(err).Caller().Msg("Could not fetch article inputs from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	request := pipeline.Request{
		Tid:     task.redisKey,
		Title:   task.articleTask.Title,
		Article: article,
		Pairs:   pairs,
	}
	result, ok := <-worker.ppln(request)
	if !ok {
		task.log.Error().Msg("Pipeline channel was closed before returning anything")
		return errEmptyResult
	}
	task.log.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, result); err != nil {
		task.log.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.articleTask.TaskStatuses.DependencyPaths
	taskLogger := task.log

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	job, err := worker.redis.getJobTask(task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for article task")
		return false, err
	}
	if job.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending back to Sequencer.")
		return false, worker.redis.onTaskCancelled(task)
	}
	if job.StopArticlesOnFailure && len(job.FailedArticles) > 0 {
		failed := job.FailedArticles[0]
		taskLogger.Info().Msgf("Task is not required because article %q of the job already failed. Sending back to Sequencer.", failed)
		return false, worker.redis.onTaskCancelled(
			task,
			fmt.Sprintf(
				"Task was marked as %q because article %q of the same job has failed and the job stops on failure.",
				tasks.TaskStatusCanceled,
				failed,
			),
		)
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Dependency path task has exceeded retries. Sending back to Sequencer.")
		return false, worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
	}
	return true, nil
}
