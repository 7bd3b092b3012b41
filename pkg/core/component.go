package core

import (
	"fmt"
	"sort"

	"github.com/techquest-tech/di-bootstrap/pkg/di"
	"go.uber.org/zap"
)

// Component runs once the provider is built. Higher priority runs first.
type Component interface {
	Priority() int
	OnProviderBuilt(p *di.Provider) error
}

type DefaultComponent struct{}

func (dc *DefaultComponent) Priority() int {
	return 0
}

func (a *App) RegisterComponent(comp Component) {
	a.log().Info("registered component", zap.String("component", fmt.Sprintf("%T", comp)))
	a.components = append(a.components, comp)
}

func (a *App) initComponents(p *di.Provider) error {
	sort.SliceStable(a.components, func(i, j int) bool {
		return a.components[i].Priority() > a.components[j].Priority()
	})
	for _, item := range a.components {
		err := item.OnProviderBuilt(p)
		if err != nil {
			a.log().Error("init component failed.", zap.Error(err))
			return err
		}
	}
	return nil
}
