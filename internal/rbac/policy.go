package rbac

// Default policy. Learners get the course-taking surface; admins everything.
var RolePermissions = map[string][]string{
	"user": {
		"profile:view",
		"profile:update",
		"user:change_password",
		"course:view",
		"lesson:view",
		"lesson:start",
		"lesson:complete",
		"quiz:take",
		"certificate:download",
		"tour:view",
		"asset:view",
	},
	"admin": {
		"*", // everything
	},
}
