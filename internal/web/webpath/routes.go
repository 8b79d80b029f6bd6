package webpath

const (
	Health  = "/healthz"
	Metrics = "/metrics"

	Api      = "/api"
	Auth     = Api + "/auth"
	Register = Auth + "/register"
	Login    = Auth + "/login"
	Users    = Api + "/users"
	User     = Users + "/:id"
)
