package accessservice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "access_decisions_total",
		Help:      "Access decisions by outcome and the rule that produced them.",
	}, []string{"decision", "rule"})

	ruleErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "access_rule_errors_total",
		Help:      "Rule evaluations that failed and were treated as no match.",
	}, []string{"rule"})

	permissionCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "permission_cache_requests_total",
		Help:      "Permission cache lookups by result.",
	}, []string{"result"})

	groupCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "group_cache_requests_total",
		Help:      "Group membership cache lookups by result.",
	}, []string{"result"})
)
