package marketplace

import (
	"context"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/internal/validation"
	"delivery-marketplace/utils"
	"fmt"
)

// Jobs lists, shows and posts delivery jobs
type Jobs struct {
	api      operation.Doer
	validate *validation.Validator
}

// NewJobs creates the jobs service
func NewJobs(api operation.Doer, v *validation.Validator) *Jobs {
	return &Jobs{api: api, validate: v}
}

// List returns the jobs relevant to user: a sender sees their own postings,
// everyone else sees the open board
func (j *Jobs) List(ctx context.Context, user models.User) ([]models.Job, error) {
	req := operation.Request{Op: operation.ListJobs}
	if user.IsSender() {
		req = operation.Request{Op: operation.ListMyJobs, OwnerID: user.ID}
	}

	resp, err := j.api.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return decodeList[models.Job](resp)
}

// Get returns a single job
func (j *Jobs) Get(ctx context.Context, id int64) (models.Job, error) {
	resp, err := j.api.Do(ctx, operation.Request{Op: operation.GetJob, JobID: id})
	if err != nil {
		return models.Job{}, fmt.Errorf("get job %d: %w", id, err)
	}

	var job models.Job
	if err := resp.Decode(&job); err != nil {
		return models.Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return job, nil
}

// Create posts a job. A form that fails validation is never sent.
func (j *Jobs) Create(ctx context.Context, form validation.JobForm) (models.Job, error) {
	if err := j.validate.Struct(form); err != nil {
		return models.Job{}, err
	}

	resp, err := j.api.Do(ctx, operation.Request{Op: operation.CreateJob, Body: form.Input()})
	if err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}

	var job models.Job
	if err := resp.Decode(&job); err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}
	utils.Info("marketplace: job posted", map[string]any{"job_id": job.ID, "goods": job.GoodsName})
	return job, nil
}
