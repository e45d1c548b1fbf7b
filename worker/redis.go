package worker

import (
	"fmt"

	"scirel.ai/deppath/tasks"
)

type redisTransactions interface {
	getArticleTask(redisKey string) (*tasks.ArticleTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) updateInfo(task *Task, update func(info *tasks.TaskInfo)) error {
	return wrapper.tasksClient.Articles.Update(task.redisKey, func(articleTask *tasks.ArticleTask) {
		update(&articleTask.TaskStatuses.DependencyPaths)
	})
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.updateInfo(task, func(info *tasks.TaskInfo) {
		info.Status = tasks.TaskStatusStarted
		info.Attempts++
		info.StartedAt = getFormattedNow()
		info.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	return wrapper.updateInfo(task, func(info *tasks.TaskInfo) {
		info.Status = tasks.TaskStatusCanceled
		info.StartedAt = getFormattedNow()
		info.CompletedAt = getFormattedNow()
		info.Attempts++
		info.ErrorMessages = append(info.ErrorMessages, errorMessages...)
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Jobs.Update(task.articleTask.JobID, func(job *tasks.JobTask) {
		job.FailedArticles = append(job.FailedArticles, task.redisKey)
	})
	if err != nil {
		return err
	}
	return wrapper.updateInfo(task, func(info *tasks.TaskInfo) {
		info.Status = tasks.TaskStatusCompletedFailure
		info.StartedAt = getFormattedNow()
		info.CompletedAt = getFormattedNow()
		info.Attempts++
		info.ErrorMessages = append(
			info.ErrorMessages,
			fmt.Sprintf("Task has exceeded retries. (Attempts: %d, max retries: %d )", info.Attempts, maxRetries),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.updateInfo(task, func(info *tasks.TaskInfo) {
		info.Status = tasks.TaskStatusFailed
		info.CompletedAt = getFormattedNow()
		info.ErrorMessages = append(info.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.updateInfo(task, func(info *tasks.TaskInfo) {
		if !info.Status.Complete() {
			info.Status = tasks.TaskStatusCompletedSuccess
		}
		info.CompletedAt = getFormattedNow()
		info.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getArticleTask(redisKey string) (*tasks.ArticleTask, error) {
	return wrapper.tasksClient.Articles.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.Get(task.articleTask.JobID)
}
