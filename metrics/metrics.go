package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cncbackend"

var (
	SubmissionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "submissions_created_total", Help: "Contact submissions stored."},
	)
	SubmissionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "submissions_rejected_total", Help: "Contact submissions refused before storage, by reason."},
		[]string{"reason"},
	)
	ProjectsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "projects_created_total", Help: "Catalog projects created."},
	)
	UploadsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "uploads_stored_total", Help: "Files uploaded to object storage, by kind."},
		[]string{"kind"},
	)
	AuthDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "auth_denied_total", Help: "Admin requests refused by the token gate, by reason."},
		[]string{"reason"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SubmissionsCreated)
	reg.MustRegister(SubmissionsRejected)
	reg.MustRegister(ProjectsCreated)
	reg.MustRegister(UploadsStored)
	reg.MustRegister(AuthDenied)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
