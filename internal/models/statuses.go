package models

type UserRole string
type ProjectStatus string
type TaskStatus string
type OTPPurpose string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	ProjectStatusNew          ProjectStatus = "new"
	ProjectStatusRequirements ProjectStatus = "requirement-gathering"
	ProjectStatusPlanning     ProjectStatus = "planning"
	ProjectStatusExecution    ProjectStatus = "execution"
	ProjectStatusMonitoring   ProjectStatus = "monitoring-and-control"
	ProjectStatusClose        ProjectStatus = "close"
	ProjectStatusBlock        ProjectStatus = "block"
	ProjectStatusWontDone     ProjectStatus = "wont-done"

	TaskStatusNew        TaskStatus = "new"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusTesting    TaskStatus = "testing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlock      TaskStatus = "block"
	TaskStatusWontDone   TaskStatus = "wont-done"

	OTPPurposeSignup OTPPurpose = "signup"
	OTPPurposeReset  OTPPurpose = "reset"
)

// ValidRole reports whether the role is one of the two known roles.
func ValidRole(r UserRole) bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusNew, ProjectStatusRequirements, ProjectStatusPlanning,
		ProjectStatusExecution, ProjectStatusMonitoring, ProjectStatusClose,
		ProjectStatusBlock, ProjectStatusWontDone:
		return true
	}
	return false
}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusNew, TaskStatusTodo, TaskStatusInProgress,
		TaskStatusTesting, TaskStatusDone, TaskStatusBlock, TaskStatusWontDone:
		return true
	}
	return false
}
