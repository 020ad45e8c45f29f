package command

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/listener"
	"github.com/pixil98/go-service"
)

type ListenerConfig struct {
	Port uint16 `json:"port"`
	Path string `json:"path,omitempty"`
}

func (cl *ListenerConfig) Validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	if cl.Path != "" && !strings.HasPrefix(cl.Path, "/") {
		el.Add(fmt.Errorf("path must start with /"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) service.Worker {
	return listener.NewWebsocketListener(cl.Port, cl.Path, cm)
}
