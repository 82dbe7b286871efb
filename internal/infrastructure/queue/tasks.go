// Package queue hands product asset jobs to asynq workers.
package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskProductAssets = "products.assets"

type ProductAssetsPayload struct {
	JobID     string `json:"jobId"`
	ProductID int64  `json:"productId"`
}

func NewProductAssetsTask(payload ProductAssetsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProductAssets, data), nil
}

func ParseProductAssetsPayload(task *asynq.Task) (ProductAssetsPayload, error) {
	var payload ProductAssetsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProductAssetsPayload{}, err
	}
	return payload, nil
}
