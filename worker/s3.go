package worker

import (
	"fmt"

	"scirel.ai/deppath/s3client"
)

type s3Transactions interface {
	saveResultsFile(task *Task, result string) error
	getArticleInputs(task *Task) (article []byte, pairs []byte, err error)
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) saveResultsFile(task *Task, result string) error {
	_, err := wrapper.s3Client.Upload([]byte(result), getResultsFileKey(task))
	return err
}

func (wrapper *s3ClientWrapper) getArticleInputs(task *Task) ([]byte, []byte, error) {
	article, err := wrapper.s3Client.Download(task.articleTask.DependencyFileKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parser output %s: %w", task.articleTask.DependencyFileKey, err)
	}
	pairs, err := wrapper.s3Client.Download(task.articleTask.PairsFileKey)
	if err != nil {
		return nil, nil, fmt.Errorf("entity pairs %s: %w", task.articleTask.PairsFileKey, err)
	}
	return article, pairs, nil
}
