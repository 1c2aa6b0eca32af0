package config

const (
	userServiceURLVar    = "USER_SERVICE_URL"
	projectServiceURLVar = "PROJECT_SERVICE_URL"
	taskServiceURLVar    = "TASK_SERVICE_URL"
	chatServiceURLVar    = "CHAT_SERVICE_URL"
)

// ServicesConfig provides the base URL of each backend service. The refresh
// endpoint always lives on the user service, whichever client hits a 401.
type ServicesConfig interface {
	GetUserServiceURL() string
	GetProjectServiceURL() string
	GetTaskServiceURL() string
	GetChatServiceURL() string
}

type Services struct{}

var _ ServicesConfig = Services{}

func (Services) GetUserServiceURL() string {
	return GetEnv(userServiceURLVar, "http://localhost:8080")
}

func (Services) GetProjectServiceURL() string {
	return GetEnv(projectServiceURLVar, "http://localhost:8081")
}

func (Services) GetTaskServiceURL() string {
	return GetEnv(taskServiceURLVar, "http://localhost:8082")
}

func (Services) GetChatServiceURL() string {
	return GetEnv(chatServiceURLVar, "http://localhost:8083")
}
