package tasks

import (
	"scirel.ai/deppath/redis"
)

const JobsDB redis.DB = 1

type JobTask struct {
	UserCanceled          bool     `json:"user_canceled"`
	StopArticlesOnFailure bool     `json:"stop_articles_on_failure"`
	FailedArticles        []string `json:"failed_articles"`
}

type JobTasks struct {
	client redis.Client
}

func (tasks JobTasks) Get(jobID string) (*JobTask, error) {
	var task JobTask
	if err := tasks.client.GetDocument(jobID, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks JobTasks) Update(jobID string, updateFunc func(task *JobTask)) error {
	var task JobTask
	return tasks.client.UpdateDocument(jobID, &task, func() {
		updateFunc(&task)
	})
}
