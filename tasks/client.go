// Package tasks reads and updates the task documents that coordinate
// distributed extraction jobs.
package tasks

import (
	"scirel.ai/deppath/redis"
)

type Client struct {
	Articles ArticleTasks
	Jobs     JobTasks
}

func NewClient() (Client, error) {
	articlesRedisClient, err := redis.NewClient(ArticlesDB)
	if err != nil {
		return Client{}, err
	}
	jobsRedisClient, err := redis.NewClient(JobsDB)
	if err != nil {
		_ = articlesRedisClient.Close()
		return Client{}, err
	}
	return Client{
		Articles: ArticleTasks{client: articlesRedisClient},
		Jobs:     JobTasks{client: jobsRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Articles.client.Close()
	_ = client.Jobs.client.Close()
}
