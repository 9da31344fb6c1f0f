package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="catalog"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
		// Бакеты от 1ms до 10s, загрузка изображений может быть долгой
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Метрики загрузки изображений (внешний blob-storage)
// =============================================================================

// ImageUploadsTotal - счётчик успешно загруженных изображений
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Total number of images uploaded to blob storage",
	},
	[]string{"service", "folder"},
)

// ImageUploadErrors - счётчик неудачных загрузок
var ImageUploadErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "image_upload_errors_total",
		Help: "Total number of failed image uploads",
	},
	[]string{"service", "folder"},
)

// ImageUploadDuration - время загрузки одного файла во внешнее хранилище
var ImageUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "image_upload_duration_seconds",
		Help:    "Duration of image uploads to blob storage in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
	[]string{"service", "folder"},
)

// =============================================================================
// Redis Cache Метрики
// =============================================================================

// RedisCacheHits - попадания в кеш
var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

// RedisCacheMisses - промахи кеша
var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - счётчик отправленных сообщений
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of messages produced to Kafka",
	},
	[]string{"service", "topic"},
)

// KafkaProduceDuration - время отправки сообщения в Kafka
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka message production in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки при работе с Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)
