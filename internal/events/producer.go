package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// ============================================================
// Job events
// ============================================================

// JobEvent is published on every job state transition so other
// services can follow processing progress without polling.
type JobEvent struct {
	JobID        string `json:"job_id"`
	FileID       string `json:"file_id"`
	Status       string `json:"status"`
	Stage        string `json:"stage,omitempty"`
	Progress     int    `json:"progress"`
	ElementCount int    `json:"element_count,omitempty"`
	Error        string `json:"error,omitempty"`
	EmittedAt    string `json:"emitted_at"`
}

// Publisher abstracts the event sink so the job manager works
// identically with Kafka attached or disabled.
type Publisher interface {
	PublishJobEvent(evt JobEvent) error
	Close()
}

// NewPublisher returns a Kafka-backed publisher when brokers are
// configured and a log-only publisher otherwise. A missing broker
// is a deployment choice, not an error.
func NewPublisher(brokers, topic string) Publisher {
	if brokers == "" {
		log.Println("[EVENTS] No Kafka brokers configured, logging job events locally")
		return LogPublisher{}
	}
	pub, err := NewKafkaPublisher(brokers, topic)
	if err != nil {
		log.Printf("[EVENTS] Kafka unavailable, logging job events locally: %v", err)
		return LogPublisher{}
	}
	return pub
}

// ============================================================
// Kafka publisher
// ============================================================

type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	delivery chan kafka.Event
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": true,
		"compression.type":   "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		delivery: make(chan kafka.Event, 256),
		done:     make(chan struct{}),
	}

	p.wg.Add(1)
	go p.watchDeliveries()

	log.Printf("[EVENTS] Kafka publisher ready, topic=%s brokers=%s", topic, brokers)
	return p, nil
}

// watchDeliveries drains delivery reports. Failed deliveries are
// logged and dropped, events are advisory and jobs stay queryable
// over HTTP either way.
func (p *KafkaPublisher) watchDeliveries() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case e := <-p.delivery:
			m, ok := e.(*kafka.Message)
			if !ok {
				continue
			}
			if m.TopicPartition.Error != nil {
				log.Printf("[EVENTS] Delivery failed: %v", m.TopicPartition.Error)
			}
		}
	}
}

func (p *KafkaPublisher) PublishJobEvent(evt JobEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(evt.JobID),
		Value: payload,
	}

	if err := p.producer.Produce(msg, p.delivery); err != nil {
		return fmt.Errorf("produce job event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	close(p.done)
	p.wg.Wait()
	p.producer.Close()
}

// ============================================================
// Log publisher
// ============================================================

// LogPublisher writes job events to the service log. It stands in
// for Kafka in single-node deployments and tests.
type LogPublisher struct{}

func (LogPublisher) PublishJobEvent(evt JobEvent) error {
	log.Printf("[EVENTS] Job %s: %s (stage=%s, progress=%d)", evt.JobID, evt.Status, evt.Stage, evt.Progress)
	return nil
}

func (LogPublisher) Close() {}
