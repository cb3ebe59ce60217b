// Package inventory loads the fleet inventory file: the registry of managed
// instances the sweep and the per-instance commands operate on.
package inventory

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"VCS_FMS_Microservice/pkg/remote"
)

// Instance is a registered managed host. Key material referenced here is
// provisioned out of band; the inventory never creates it.
type Instance struct {
	Name      string `yaml:"name" validate:"required"`
	Address   string `yaml:"address" validate:"required,hostname|ip"`
	Port      int    `yaml:"port" validate:"gte=0,lte=65535"`
	User      string `yaml:"user" validate:"required"`
	KeyFile   string `yaml:"key_file" validate:"required"`
	ChannelID string `yaml:"channel_id"`
}

func (i Instance) Host() remote.Host {
	return remote.Host{
		Name:    i.Name,
		Address: i.Address,
		Port:    i.Port,
		User:    i.User,
		KeyFile: i.KeyFile,
	}
}

type Fleet struct {
	Hosts []Instance `yaml:"hosts" validate:"required,dive"`
}

func (f Fleet) HostList() []remote.Host {
	hosts := make([]remote.Host, 0, len(f.Hosts))
	for _, instance := range f.Hosts {
		hosts = append(hosts, instance.Host())
	}
	return hosts
}

// Resolve maps an instance name to its descriptor. The reserved name "self"
// resolves to local execution on the current machine.
func (f Fleet) Resolve(name string) (Instance, bool) {
	if name == SelfInstance {
		return Instance{Name: SelfInstance}, true
	}
	for _, instance := range f.Hosts {
		if instance.Name == name {
			return instance, true
		}
	}
	return Instance{}, false
}

const SelfInstance = "self"

// IsSelf reports whether the instance executes locally.
func (i Instance) IsSelf() bool {
	return i.Name == SelfInstance
}

// ResolveHost returns the execution host for an instance, handling self.
func (i Instance) ResolveHost() remote.Host {
	if i.IsSelf() {
		return remote.LocalHost(SelfInstance)
	}
	return i.Host()
}

// Load reads and validates the inventory file.
func Load(path string) (Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fleet{}, fmt.Errorf("inventory.Load: %w", err)
	}
	var fleet Fleet
	if err = yaml.Unmarshal(data, &fleet); err != nil {
		return Fleet{}, fmt.Errorf("inventory.Load: %w", err)
	}
	if err = validator.New().Struct(fleet); err != nil {
		return Fleet{}, fmt.Errorf("inventory.Load: %w", err)
	}
	return fleet, nil
}
