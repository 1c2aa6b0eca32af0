package routes

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	RouteRoot = "/"
	RouteAuth = "/auth"

	// Management routes (Manager, Leader)
	RouteOverview          = "/overview"
	RouteUserManagement    = "/user-management"
	RouteProjectManagement = "/project-management"
	RouteTaskManagement    = "/task-management"

	// Personal todo view (Employee)
	RouteUserTask = "/user-task"
)
