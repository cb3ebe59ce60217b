// Package probe builds the batched diagnosis command, runs it over the remote
// channel and decodes the delimited report it prints. All checks for one host
// execute in a single remote round trip: connection setup dominates the cost
// of an authenticated shell, so N checks per call beats N calls.
package probe

import (
	"fmt"
	"strings"

	"VCS_FMS_Microservice/internal/diagnosis/model"
)

// TargetConfig describes the monitored gateway service on a host. Values are
// injected into the probe script as quoted shell words; nothing here is ever
// substituted into a script template at deploy time.
type TargetConfig struct {
	ServiceUnit      string   `envconfig:"TARGET_SERVICE_UNIT" default:"gateway.service"`
	ProcessUser      string   `envconfig:"TARGET_PROCESS_USER" default:"gateway"`
	HealthURL        string   `envconfig:"TARGET_HEALTH_URL" default:"http://127.0.0.1:18789/health"`
	ConfigPath       string   `envconfig:"TARGET_CONFIG_PATH" default:"/etc/gateway/config.json"`
	SessionDir       string   `envconfig:"TARGET_SESSION_DIR" default:"/var/lib/gateway/sessions"`
	CheckpointFile   string   `envconfig:"TARGET_CHECKPOINT_FILE" default:"/var/lib/gateway/last_checkpoint"`
	CLITool          string   `envconfig:"TARGET_CLI_TOOL" default:"gateway-cli"`
	TLSCertPath      string   `envconfig:"TARGET_TLS_CERT" default:"/etc/gateway/identity.pem"`
	RequiredKeys     []string `envconfig:"TARGET_REQUIRED_KEYS" default:"api_key,channel_id,instance_name"`
	UpstreamURL      string   `envconfig:"TARGET_UPSTREAM_URL" default:"https://api.upstream.example/v1/models"`
	UpstreamKeyFile  string   `envconfig:"TARGET_UPSTREAM_KEY_FILE" default:"/etc/gateway/upstream.key"`
	DelegatedAuthCmd string   `envconfig:"TARGET_DELEGATED_AUTH_CMD" default:"gateway-cli auth ping"`
}

// Sentinel separates check sections in the probe batch output.
const Sentinel = "----FMSCHECK----"

// FullCheckSet is the ordered list of checks a full diagnosis runs. Order only
// affects reporting; the checks themselves are independent.
var FullCheckSet = []string{
	model.CheckGatewayProcess,
	model.CheckHealthEndpoint,
	model.CheckSessionStore,
	model.CheckConfigFile,
	model.CheckDiskSpace,
	model.CheckMemory,
	model.CheckCLITool,
	model.CheckDelegatedAuth,
	model.CheckUpstreamAPIKey,
	model.CheckProcIdentity,
	model.CheckTLSIdentity,
	model.CheckConfigKeys,
	model.CheckCheckpointAge,
}

// LivenessCheckSet is the reduced set the watchdog runs every tick.
var LivenessCheckSet = []string{
	model.CheckGatewayProcess,
	model.CheckHealthEndpoint,
	model.CheckDiskSpace,
	model.CheckMemory,
}

// BuildScript assembles the batched shell script for the given checks. Every
// section starts with the sentinel line followed by one report line, so a
// section that dies mid-way still leaves the next section parseable.
func BuildScript(cfg TargetConfig, checks []string) string {
	var b strings.Builder
	b.WriteString("set +e\n")
	for _, name := range checks {
		section, ok := sections[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "echo '%s'\n", Sentinel)
		b.WriteString(section(cfg))
		b.WriteByte('\n')
	}
	return b.String()
}

var sections = map[string]func(TargetConfig) string{
	model.CheckGatewayProcess: func(cfg TargetConfig) string {
		unit := quote(cfg.ServiceUnit)
		return fmt.Sprintf(
			`if systemctl is-active --quiet %s; then echo 'gateway_process ok'; else echo 'gateway_process error:unit inactive'; fi`,
			unit)
	},
	model.CheckHealthEndpoint: func(cfg TargetConfig) string {
		return fmt.Sprintf(
			`hc=$(curl -s -o /dev/null -m 5 -w '%%{http_code}' %s); if [ "$hc" = "200" ]; then echo 'health_endpoint ok'; else echo "health_endpoint error:HTTP $hc"; fi`,
			quote(cfg.HealthURL))
	},
	model.CheckSessionStore: func(cfg TargetConfig) string {
		dir := quote(cfg.SessionDir)
		return fmt.Sprintf(
			`if [ -d %s ] && [ -w %s ]; then echo 'session_store ok'; else echo 'session_store error:session dir missing or not writable'; fi`,
			dir, dir)
	},
	model.CheckConfigFile: func(cfg TargetConfig) string {
		path := quote(cfg.ConfigPath)
		return fmt.Sprintf(
			`if [ ! -f %s ]; then echo 'config_file error:config missing'; elif jq empty %s >/dev/null 2>&1; then echo 'config_file ok'; else echo 'config_file error:malformed json'; fi`,
			path, path)
	},
	model.CheckDiskSpace: func(cfg TargetConfig) string {
		return `echo "disk_space raw:$(df -P / | awk 'NR==2 {gsub(/%/,"",$5); print 100-$5}')"`
	},
	model.CheckMemory: func(cfg TargetConfig) string {
		return `echo "memory raw:$(free | awk '/^Mem:/ {printf "%d", $7*100/$2}')"`
	},
	model.CheckCLITool: func(cfg TargetConfig) string {
		return fmt.Sprintf(
			`if command -v %s >/dev/null 2>&1; then echo 'cli_tool ok'; else echo 'cli_tool error:tool not on PATH'; fi`,
			quote(cfg.CLITool))
	},
	model.CheckDelegatedAuth: func(cfg TargetConfig) string {
		return fmt.Sprintf(
			`if timeout 15 %s >/dev/null 2>&1; then echo 'delegated_auth ok'; else echo 'delegated_auth error:auth round trip failed'; fi`,
			cfg.DelegatedAuthCmd)
	},
	model.CheckUpstreamAPIKey: func(cfg TargetConfig) string {
		return fmt.Sprintf(
			`echo "upstream_api_key http:$(curl -s -o /dev/null -m 10 -w '%%{http_code}' -H "Authorization: Bearer $(cat %s 2>/dev/null)" %s)"`,
			quote(cfg.UpstreamKeyFile), quote(cfg.UpstreamURL))
	},
	model.CheckProcIdentity: func(cfg TargetConfig) string {
		return fmt.Sprintf(
			`pid=$(systemctl show -p MainPID --value %s 2>/dev/null); owner=$(stat -c %%U "/proc/$pid" 2>/dev/null); if [ "$owner" = %s ]; then echo 'process_identity ok'; else echo "process_identity error:running as ${owner:-unknown}"; fi`,
			quote(cfg.ServiceUnit), quote(cfg.ProcessUser))
	},
	model.CheckTLSIdentity: func(cfg TargetConfig) string {
		cert := quote(cfg.TLSCertPath)
		return fmt.Sprintf(
			`if [ ! -f %s ]; then echo 'tls_identity error:identity file missing'; elif openssl x509 -checkend 0 -noout -in %s >/dev/null 2>&1; then echo 'tls_identity ok'; else echo 'tls_identity error:certificate expired or invalid'; fi`,
			cert, cert)
	},
	model.CheckConfigKeys: func(cfg TargetConfig) string {
		path := quote(cfg.ConfigPath)
		var probes []string
		for _, key := range cfg.RequiredKeys {
			probes = append(probes, fmt.Sprintf(`jq -e %s %s >/dev/null 2>&1 || missing="$missing %s"`,
				quote(fmt.Sprintf(`has(%q)`, key)), path, key))
		}
		return fmt.Sprintf(
			`missing=""; %s; if [ -z "$missing" ]; then echo 'config_keys ok'; else echo "config_keys error:missing keys:$missing"; fi`,
			strings.Join(probes, "; "))
	},
	model.CheckCheckpointAge: func(cfg TargetConfig) string {
		file := quote(cfg.CheckpointFile)
		return fmt.Sprintf(
			`if [ -f %s ]; then echo "checkpoint_age raw:$(( $(date +%%s) - $(stat -c %%Y %s) ))"; else echo 'checkpoint_age warn:no checkpoint recorded'; fi`,
			file, file)
	},
}

// quote wraps a value in single quotes for safe interpolation into the probe
// script, escaping embedded single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
