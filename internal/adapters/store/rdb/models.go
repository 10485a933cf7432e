package rdb

import "time"

// WorkspaceRecord is the RDB persistence model for a workspace.
// Table name: workspaces
type WorkspaceRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	Name        string    `gorm:"type:text;not null;uniqueIndex"`
	Root        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Active      bool      `gorm:"not null;default:false"`
	Settings    string    `gorm:"type:text"` // JSON encoded configset.Settings
	Metadata    string    `gorm:"type:text"` // JSON encoded map[string]string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (WorkspaceRecord) TableName() string { return "workspaces" }

// PipelineRecord is the RDB persistence model for a pipeline.
// Table name: pipelines
type PipelineRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID string    `gorm:"type:text;not null;index;uniqueIndex:idx_pipelines_workspace_name"`
	Name        string    `gorm:"type:text;not null;uniqueIndex:idx_pipelines_workspace_name"`
	Description string    `gorm:"type:text"`
	Steps       string    `gorm:"type:text;not null"` // JSON encoded []pipeline.Step
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (PipelineRecord) TableName() string { return "pipelines" }

// RunRecord is the RDB persistence model for a pipeline run.
// Table name: runs
type RunRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	PipelineID  string    `gorm:"type:text;not null;index"`
	WorkspaceID string    `gorm:"type:text;not null;index"`
	Status      string    `gorm:"type:text;not null"`
	Input       string    `gorm:"type:text"`
	Steps       string    `gorm:"type:text"` // JSON encoded []pipeline.StepResult
	TotalTokens int       `gorm:"not null"`
	StartedAt   time.Time `gorm:"not null;index"`
	DurationNS  int64     `gorm:"not null"`
	Error       string    `gorm:"type:text"`
}

func (RunRecord) TableName() string { return "runs" }

// GlobalSettingRecord is the RDB persistence model for one global setting.
// Table name: global_settings
type GlobalSettingRecord struct {
	Key       string    `gorm:"primaryKey;type:text;not null"`
	Value     string    `gorm:"type:text;not null"` // JSON encoded configset.Value
	UpdatedAt time.Time `gorm:"not null"`
}

func (GlobalSettingRecord) TableName() string { return "global_settings" }
