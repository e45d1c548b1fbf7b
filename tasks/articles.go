package tasks

import (
	"scirel.ai/deppath/redis"
)

const ArticlesDB redis.DB = 2

// ArticleTask points at the inputs of one article in object storage.
type ArticleTask struct {
	JobID             string              `json:"job_id"`
	Title             string              `json:"title"`
	DependencyFileKey string              `json:"dependency_file_key"`
	PairsFileKey      string              `json:"pairs_file_key"`
	TaskStatuses      ArticleTaskStatuses `json:"task_statuses"`
}

type ArticleTaskStatuses struct {
	DependencyPaths TaskInfo `json:"dependency_paths"`
}

type ArticleTasks struct {
	client redis.Client
}

func (tasks ArticleTasks) Get(redisKey string) (*ArticleTask, error) {
	var task ArticleTask
	if err := tasks.client.GetDocument(redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks ArticleTasks) Update(redisKey string, updateFunc func(task *ArticleTask)) error {
	var task ArticleTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
