package notifier

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher публикация через kafka-go; ключ сообщения определяет партицию
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher создает writer без фиксированного топика: топик задаётся в каждом сообщении
func NewKafkaPublisher(brokers []string, writeTimeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			WriteTimeout:           writeTimeout,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	kafkaMsgs := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		kafkaMsgs = append(kafkaMsgs, kafka.Message{
			Topic:   m.Topic,
			Key:     m.Key,
			Value:   m.Value,
			Headers: toKafkaHeaders(m.Headers),
		})
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsgs...); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toKafkaHeaders(headers map[string]string) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		res = append(res, kafka.Header{Key: k, Value: []byte(headers[k])})
	}
	return res
}

// LogPublisher пишет сообщения в лог; используется, когда брокер не настроен
type LogPublisher struct {
	logger Logger
}

func NewLogPublisher(logger Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		p.logger.Info("Notifier: topic=%s key=%s headers=[%s] value=%s",
			m.Topic, string(m.Key), formatHeaders(m.Headers), string(m.Value))
	}
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

func formatHeaders(headers map[string]string) string {
	parts := make([]string, 0, len(headers))
	for k, v := range headers {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
