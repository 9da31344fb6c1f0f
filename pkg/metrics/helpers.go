package metrics

import (
	"time"
)

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordImageUpload(service, folder string, duration time.Duration) {
	ImageUploadsTotal.WithLabelValues(service, folder).Inc()
	ImageUploadDuration.WithLabelValues(service, folder).Observe(duration.Seconds())
}

func RecordImageUploadError(service, folder string) {
	ImageUploadErrors.WithLabelValues(service, folder).Inc()
}

func RecordKafkaMessageProduced(service, topic string, duration time.Duration) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
	KafkaProduceDuration.WithLabelValues(service, topic).Observe(duration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}
