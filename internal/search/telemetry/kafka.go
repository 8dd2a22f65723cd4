package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"immersion/internal/establishment/models"
)

// DefaultTopic is where search telemetry lands unless configured otherwise.
const DefaultTopic = "immersion.searches-made"

// Kafka publishes search telemetry to a Kafka topic so analytics pipelines
// consume it off-process. Records are keyed by search id.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type KafkaOption func(*Kafka)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(k *Kafka) {
		k.logger = logger
	}
}

// NewKafka connects to the brokers and ensures the topic exists.
func NewKafka(brokers []string, topic string, opts ...KafkaOption) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka telemetry sink: at least one broker is required")
	}
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka telemetry sink: new client: %w", err)
	}

	if err := ensureTopic(context.Background(), client, topic); err != nil {
		client.Close()
		return nil, err
	}

	k := &Kafka{client: client, topic: topic}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	responses, err := adm.CreateTopics(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("kafka telemetry sink: create topic %s: %w", topic, err)
	}
	for _, response := range responses {
		if response.Err != nil && !errors.Is(response.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("kafka telemetry sink: create topic %s: %w", topic, response.Err)
		}
	}
	return nil
}

type searchMadePayload struct {
	ID                   string   `json:"id"`
	Lat                  float64  `json:"lat"`
	Lon                  float64  `json:"lon"`
	DistanceKm           float64  `json:"distanceKm"`
	AppellationCodes     []string `json:"appellationCodes,omitempty"`
	RomeCode             string   `json:"romeCode,omitempty"`
	SortedBy             string   `json:"sortedBy"`
	VoluntaryToImmersion *bool    `json:"voluntaryToImmersion,omitempty"`
	SearchableBy         string   `json:"searchableBy,omitempty"`
	APIConsumerName      string   `json:"apiConsumerName,omitempty"`
	NumberOfResults      int      `json:"numberOfResults"`
	MadeAt               string   `json:"madeAt"`
}

func (k *Kafka) Record(ctx context.Context, searchMade models.SearchMade) error {
	payload := searchMadePayload{
		ID:               searchMade.ID,
		Lat:              searchMade.Lat,
		Lon:              searchMade.Lon,
		DistanceKm:       searchMade.DistanceKm,
		AppellationCodes: searchMade.AppellationCodes,
		RomeCode:         searchMade.RomeCode,
		SortedBy:         string(searchMade.SortedBy),
		SearchableBy:     string(searchMade.SearchableBy),
		APIConsumerName:  searchMade.APIConsumerName,
		NumberOfResults:  searchMade.NumberOfResults,
		MadeAt:           searchMade.MadeAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	switch searchMade.VoluntaryToImmersion {
	case models.TriStateTrue:
		v := true
		payload.VoluntaryToImmersion = &v
	case models.TriStateFalse:
		v := false
		payload.VoluntaryToImmersion = &v
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("record search made %s: marshal: %w", searchMade.ID, err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(searchMade.ID),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("record search made %s: produce: %w", searchMade.ID, err)
	}

	if k.logger != nil {
		k.logger.DebugContext(ctx, "search telemetry published",
			"search_id", searchMade.ID,
			"topic", k.topic,
		)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (k *Kafka) Close() {
	k.client.Close()
}
