package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskStatus(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusCompletedSuccess, TaskStatusCompletedFailure, TaskStatusCanceled} {
		require.True(t, s.Complete(), s)
		require.False(t, s.Submitted(), s)
	}
	for _, s := range []TaskStatus{TaskStatusSubmitted, TaskStatusStarted, TaskStatusProcessing} {
		require.True(t, s.Submitted(), s)
		require.False(t, s.Complete(), s)
	}
	require.False(t, TaskStatusFailed.Complete())
}

func TestArticleTaskDecoding(t *testing.T) {
	doc := `{
		"job_id": "job-1",
		"title": "传感器融合",
		"dependency_file_key": "jobs/job-1/传感器融合_dependency.json",
		"pairs_file_key": "jobs/job-1/传感器融合实体对.json",
		"task_statuses": {
			"dependency_paths": {"attempts": 2, "status": "failed", "error_messages": ["timeout"]},
			"parser": {"status": "completed - success"}
		}
	}`
	var task ArticleTask
	require.NoError(t, json.Unmarshal([]byte(doc), &task))
	require.Equal(t, "job-1", task.JobID)
	require.Equal(t, "jobs/job-1/传感器融合实体对.json", task.PairsFileKey)
	info := task.TaskStatuses.DependencyPaths
	require.Equal(t, 2, info.Attempts)
	require.Equal(t, TaskStatusFailed, info.Status)
	require.Equal(t, []string{"timeout"}, info.ErrorMessages)
	require.Nil(t, info.StartedAt)
}
