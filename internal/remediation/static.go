package remediation

import (
	"context"
	"fmt"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/probe"
)

type staticStrategy struct {
	cfg probe.TargetConfig
}

func (*staticStrategy) Name() string { return SourceStatic }

// Propose returns the fallback remedies for a check, first to last, minus
// anything already tried.
func (s *staticStrategy) Propose(_ context.Context, _ string, check model.CheckResult, tried []string) ([]Method, error) {
	var methods []Method
	for _, remedy := range s.table(check.Name) {
		if containsString(tried, remedy.Description) {
			continue
		}
		methods = append(methods, remedy)
	}
	return methods, nil
}

// table maps a check name to its ordered fallback remedies. Commands reuse
// the probe target configuration so paths and unit names stay in one place.
func (s *staticStrategy) table(checkName string) []Method {
	cfg := s.cfg
	restart := Method{
		Source:      SourceStatic,
		Description: fmt.Sprintf("restart service unit %s", cfg.ServiceUnit),
		Command:     fmt.Sprintf("sudo systemctl restart %s", cfg.ServiceUnit),
	}
	switch checkName {
	case model.CheckGatewayProcess, model.CheckHealthEndpoint, model.CheckProcIdentity:
		return []Method{
			restart,
			{
				Source:      SourceStatic,
				Description: fmt.Sprintf("reset failed state and restart unit %s", cfg.ServiceUnit),
				Command: fmt.Sprintf("sudo systemctl reset-failed %s && sudo systemctl restart %s",
					cfg.ServiceUnit, cfg.ServiceUnit),
			},
		}
	case model.CheckSessionStore:
		return []Method{
			{
				Source:      SourceStatic,
				Description: "recreate session store directory with service ownership",
				Command: fmt.Sprintf("sudo mkdir -p %s && sudo chown -R %s: %s",
					cfg.SessionDir, cfg.ProcessUser, cfg.SessionDir),
			},
			restart,
		}
	case model.CheckDiskSpace:
		return []Method{
			{
				Source:      SourceStatic,
				Description: "clear temporary storage and vacuum journald",
				Command:     "sudo rm -rf /tmp/gateway-* && sudo journalctl --vacuum-size=100M",
			},
			{
				Source:      SourceStatic,
				Description: "prune rotated gateway logs older than 7 days",
				Command:     "sudo find /var/log/gateway -name '*.gz' -mtime +7 -delete",
			},
		}
	case model.CheckMemory:
		return []Method{restart}
	case model.CheckDelegatedAuth, model.CheckTLSIdentity:
		return []Method{
			{
				Source:      SourceStatic,
				Description: "regenerate service credential file",
				Command:     fmt.Sprintf("sudo %s auth refresh --write %s", cfg.CLITool, cfg.TLSCertPath),
			},
			restart,
		}
	case model.CheckConfigFile, model.CheckConfigKeys:
		return []Method{
			{
				Source:      SourceStatic,
				Description: "restore newest configuration backup",
				Command: fmt.Sprintf("sudo cp $(ls -t %s.bak.* 2>/dev/null | head -1) %s",
					cfg.ConfigPath, cfg.ConfigPath),
			},
			restart,
		}
	case model.CheckCLITool:
		// Installing tooling is provisioning, not remediation.
		return nil
	default:
		return []Method{restart}
	}
}

func NewStaticStrategy(cfg probe.TargetConfig) RemediationStrategy {
	return &staticStrategy{cfg: cfg}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
