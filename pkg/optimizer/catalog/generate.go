package catalog

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// Ranges used by the synthetic catalog generator.
const (
	MinPrice        = 0.01
	MaxPrice        = 0.20
	MinAvailability = 0.90
	MaxAvailability = 0.999
	MinLatency      = 0.05 // seconds
	MaxLatency      = 0.30

	basePort = 8000
)

var serviceKinds = []struct {
	name  string
	owner string
}{
	{"auth-service", "Security Team"},
	{"user-service", "User Management Team"},
	{"order-service", "Order Team"},
	{"payment-service", "Payments Team"},
	{"inventory-service", "Supply Team"},
	{"search-service", "Discovery Team"},
}

// Generate returns n synthetic catalog entries drawn from r.
func Generate(r *rand.Rand, n int) []framework.CatalogEntry {
	entries := make([]framework.CatalogEntry, n)
	for i := 0; i < n; i++ {
		kind := serviceKinds[i%len(serviceKinds)]
		name := fmt.Sprintf("%s-%d", kind.name, i/len(serviceKinds))
		status := "active"
		if r.Float64() < 0.1 {
			status = "inactive"
		}

		entries[i] = framework.CatalogEntry{
			ID:           fmt.Sprintf("svc-%03d", i),
			Price:        round(uniform(r, MinPrice, MaxPrice), 4),
			Availability: round(uniform(r, MinAvailability, MaxAvailability), 4),
			Latency:      round(uniform(r, MinLatency, MaxLatency), 3),
			Name:         name,
			Version:      fmt.Sprintf("%d.%d.%d", 1+r.Intn(3), r.Intn(5), r.Intn(10)),
			Owner:        kind.owner,
			Host:         fmt.Sprintf("%s.default.svc.cluster.local", name),
			Port:         basePort + i,
			Status:       status,
		}
	}
	return entries
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
