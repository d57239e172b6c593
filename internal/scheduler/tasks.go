package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskEnergyDataWarmup = "energydata.warmup"

// WarmupPayload selects which years to refresh. No years means the
// default window of recent years.
type WarmupPayload struct {
	ForceRefresh bool  `json:"forceRefresh"`
	Years        []int `json:"years,omitempty"`
}

func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEnergyDataWarmup, data), nil
}

func ParseWarmupPayload(task *asynq.Task) (WarmupPayload, error) {
	var payload WarmupPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WarmupPayload{}, err
	}
	return payload, nil
}
