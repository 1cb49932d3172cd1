package project

import (
	"context"
	"time"

	"github.com/trezcool/timeoff/core"
)

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Client    string    `json:"client"`
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	Billable  bool      `json:"billable"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  *bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (p *Project) SetActive(active bool) {
	p.IsActive = &active
}

func (p *Project) Active() bool {
	return p.IsActive != nil && *p.IsActive
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name      string    `json:"name" validate:"required"`
	Client    string    `json:"client" validate:"required"`
	Category  string    `json:"category"`
	Color     string    `json:"color" validate:"omitempty,hexcolor"`
	Billable  *bool     `json:"billable"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date" validate:"omitempty,dateafter=StartDate"`
}

func (np *NewProject) Validate(ctx context.Context, svc Service) error {
	np.Name = core.CleanString(np.Name)
	np.Client = core.CleanString(np.Client)
	np.Category = core.CleanString(np.Category)

	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, np.Name, np.Client)
}

// UpdateProject defines what information may be provided to modify an existing Project.
type UpdateProject struct {
	Name      string    `json:"name"`
	Client    string    `json:"client"`
	Category  string    `json:"category"`
	Color     string    `json:"color" validate:"omitempty,hexcolor"`
	Billable  *bool     `json:"billable"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date" validate:"omitempty,dateafter=StartDate"`
	IsActive  *bool     `json:"is_active"`
}

func (up *UpdateProject) Validate(ctx context.Context, orig Project, svc Service) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if client := core.CleanString(up.Client); client != "" {
		up.Client = client
	} else {
		up.Client = orig.Client
	}
	up.Category = core.CleanString(up.Category)

	if err := core.Validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, up.Name, up.Client, orig)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Client   string `query:"client"`
	Category string `query:"category"`
	Billable *bool  `query:"billable"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Client == "" && qf.Category == "" && qf.Billable == nil && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Client = core.CleanString(qf.Client)
	qf.Category = core.CleanString(qf.Category)
}
