package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the requested service id is not in the catalog.
var ErrNotFound = errors.New("catalog: service not found")

// Service describes a redeemable service and its token cost.
type Service struct {
	ID          int64  `json:"id" yaml:"id"`                   // Catalog identifier.
	Title       string `json:"title" yaml:"title"`             // Display title.
	Cost        int64  `json:"cost" yaml:"cost"`               // Token cost, always positive.
	Icon        string `json:"icon" yaml:"icon"`               // Icon/category tag for the client.
	Description string `json:"description" yaml:"description"` // Short description.
}

// Catalog is a read-only, insertion-ordered registry of services.
type Catalog struct {
	services []Service
	index    map[int64]int
}

// DefaultServices returns the built-in service list.
func DefaultServices() []Service {
	return []Service{
		{ID: 1, Title: "이력서 첨삭", Cost: 200, Icon: "file-text", Description: "AI가 당신의 이력서를 분석하고 개선점을 제안합니다."},
		{ID: 2, Title: "심층 분석", Cost: 300, Icon: "bar-chart", Description: "당신의 커리어 경로를 심층 분석하고 발전 방향을 제시합니다."},
		{ID: 3, Title: "합격 예측", Cost: 150, Icon: "briefcase", Description: "지원한 포지션에 대한 합격 가능성을 분석합니다."},
		{ID: 4, Title: "맞춤형 추천", Cost: 250, Icon: "globe", Description: "당신에게 가장 적합한 직무와 기업을 추천합니다."},
	}
}

// New validates the given services and builds a catalog preserving their order.
func New(services []Service) (*Catalog, error) {
	c := &Catalog{
		services: make([]Service, 0, len(services)),
		index:    make(map[int64]int, len(services)),
	}
	for i, svc := range services {
		svc.Title = strings.TrimSpace(svc.Title)
		if svc.ID <= 0 {
			return nil, fmt.Errorf("catalog: service #%d: id must be positive", i)
		}
		if svc.Title == "" {
			return nil, fmt.Errorf("catalog: service %d: missing title", svc.ID)
		}
		if svc.Cost <= 0 {
			return nil, fmt.Errorf("catalog: service %d: cost must be positive", svc.ID)
		}
		if _, dup := c.index[svc.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate service id %d", svc.ID)
		}
		c.index[svc.ID] = len(c.services)
		c.services = append(c.services, svc)
	}
	return c, nil
}

// MustDefault returns a catalog built from DefaultServices.
func MustDefault() *Catalog {
	c, err := New(DefaultServices())
	if err != nil {
		panic(err)
	}
	return c
}

// List returns all services in insertion order.
func (c *Catalog) List() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Get returns the service with the given id.
func (c *Catalog) Get(id int64) (Service, error) {
	pos, ok := c.index[id]
	if !ok {
		return Service{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.services[pos], nil
}

// Len reports the number of services.
func (c *Catalog) Len() int { return len(c.services) }
