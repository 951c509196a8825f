package documentservice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "document_uploads_total",
		Help:      "Document uploads by result.",
	}, []string{"result"})

	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "document_downloads_total",
		Help:      "Document downloads by result.",
	}, []string{"result"})

	uploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docshare",
		Name:      "document_uploaded_bytes_total",
		Help:      "Bytes accepted by successful uploads.",
	})
)
