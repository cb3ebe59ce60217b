package model

// Status is the outcome class of a single check.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

// Check names produced by the probe batch. The fix orchestrator's static
// remedy table and the watchdog's reduced check set key off these.
const (
	CheckSSH            = "ssh"
	CheckGatewayProcess = "gateway_process"
	CheckHealthEndpoint = "health_endpoint"
	CheckSessionStore   = "session_store"
	CheckConfigFile     = "config_file"
	CheckDiskSpace      = "disk_space"
	CheckMemory         = "memory"
	CheckCLITool        = "cli_tool"
	CheckDelegatedAuth  = "delegated_auth"
	CheckUpstreamAPIKey = "upstream_api_key"
	CheckProcIdentity   = "process_identity"
	CheckTLSIdentity    = "tls_identity"
	CheckConfigKeys     = "config_keys"
	CheckCheckpointAge  = "checkpoint_age"
)

type CheckResult struct {
	Name   string `json:"-"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

func (c CheckResult) Failed() bool {
	return c.Status == StatusError
}
