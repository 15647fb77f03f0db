package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
)

// dlqValue собирает сообщение так же, как его публикует outbox worker в DLQ.
func dlqValue(t *testing.T, aggregateType, aggregateID, eventType, payload string) []byte {
	t.Helper()

	dlq := outbox.DLQEnvelope{
		OutboxID:      "outbox-1",
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		PublishError:  "timeout",
	}
	if payload != "" {
		dlq.Payload = json.RawMessage(payload)
	}

	inner, err := json.Marshal(dlq)
	if err != nil {
		t.Fatalf("marshal dlq envelope: %v", err)
	}

	raw, err := json.Marshal(kafka.NewEnvelope(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       inner,
	}))
	if err != nil {
		t.Fatalf("marshal kafka envelope: %v", err)
	}
	return raw
}

func TestParseBrokers(t *testing.T) {
	brokers := parseBrokers(" broker-1:9092, ,broker-2:9092 ")
	if len(brokers) != 2 || brokers[0] != "broker-1:9092" || brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers: %+v", brokers)
	}
}

func TestExtractReplayMessage_RoutesByAggregate(t *testing.T) {
	tests := []struct {
		aggregateType string
		targetTopic   string
		wantTopic     string
	}{
		{aggregateType: domain.AggregateTypeOrder, wantTopic: kafka.TopicOrderEvents},
		{aggregateType: domain.AggregateTypeProduct, wantTopic: kafka.TopicCatalogEvents},
		{aggregateType: domain.AggregateTypeProduct, targetTopic: "custom.topic", wantTopic: "custom.topic"},
	}

	for _, tc := range tests {
		value := dlqValue(t, tc.aggregateType, "agg-1", "x.created", `{"qty":2}`)
		got, ok, err := extractReplayMessage(value, tc.targetTopic)
		if err != nil || !ok {
			t.Fatalf("expected replay candidate, got ok=%v err=%v", ok, err)
		}
		if got.topic != tc.wantTopic {
			t.Fatalf("expected topic %s, got %s", tc.wantTopic, got.topic)
		}
		if got.key != "agg-1" {
			t.Fatalf("unexpected key: %s", got.key)
		}
		if string(got.envelope.Payload) != `{"qty":2}` {
			t.Fatalf("expected original payload, got %s", got.envelope.Payload)
		}
		if got.headers()[kafka.HeaderEventType] != "x.created" {
			t.Fatalf("unexpected headers: %+v", got.headers())
		}
	}
}

func TestExtractReplayMessage_MissingOriginalPayload(t *testing.T) {
	value := dlqValue(t, domain.AggregateTypeOrder, "order-1", domain.EventTypeOrderCreated, "")

	_, ok, err := extractReplayMessage(value, "")
	if err == nil {
		t.Fatal("expected error for missing nested payload")
	}
	if ok {
		t.Fatal("expected no replay candidate")
	}
}

func TestExtractReplayMessage_UnknownPayload(t *testing.T) {
	for _, value := range []string{`{"foo":"bar"}`, `not-json`} {
		_, ok, err := extractReplayMessage([]byte(value), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("expected %q to be skipped", value)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("unexpected first non-empty value: %q", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestReadConfig_FromFlags(t *testing.T) {
	cfg, err := readConfig([]string{
		"-brokers=broker-1:9092,broker-2:9092",
		"-target-topic=storefront.order.events",
		"-limit=10",
		"-execute=true",
		"-from-newest=true",
		"-idle-timeout=3s",
	}, io.Discard, func(string) string { return "" })
	if err != nil {
		t.Fatalf("readConfig failed: %v", err)
	}
	if len(cfg.brokers) != 2 || cfg.limit != 10 || !cfg.execute || !cfg.fromNewest {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.sourceTopic != kafka.TopicDeadLetterQueue {
		t.Fatalf("unexpected source topic: %s", cfg.sourceTopic)
	}
	if cfg.idleTimeout != 3*time.Second {
		t.Fatalf("unexpected idle-timeout: %s", cfg.idleTimeout)
	}
}

func TestReadConfig_BrokersFromEnv(t *testing.T) {
	env := map[string]string{envKafkaBrokers: "k1:9092"}
	cfg, err := readConfig(nil, io.Discard, func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("readConfig failed: %v", err)
	}
	if len(cfg.brokers) != 1 || cfg.brokers[0] != "k1:9092" {
		t.Fatalf("unexpected brokers: %+v", cfg.brokers)
	}
	if cfg.targetTopic != "" {
		t.Fatalf("expected aggregate routing by default, got %q", cfg.targetTopic)
	}
}

func TestReadConfig_ValidationErrors(t *testing.T) {
	noEnv := func(string) string { return "" }
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"-brokers="}, want: "kafka brokers are required"},
		{args: []string{"-brokers=b:9092", "-source-topic= "}, want: "source-topic is required"},
		{args: []string{"-brokers=b:9092", "-limit=0"}, want: "limit must be > 0"},
		{args: []string{"-brokers=b:9092", "-idle-timeout=0s"}, want: "idle-timeout must be > 0"},
		{args: []string{"-unknown"}, want: "flag provided but not defined"},
	}

	for _, tc := range tests {
		_, err := readConfig(tc.args, io.Discard, noEnv)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("args %v: expected %q, got %v", tc.args, tc.want, err)
		}
	}
}

func TestReplayer_DryRun(t *testing.T) {
	client := &stubOffsetClient{
		partitions: []int32{2, 0},
		offsets: map[int32]offsetRange{
			0: {oldest: 0, newest: 2},
			2: {oldest: 0, newest: 1},
		},
	}
	consumer := &stubPartitionConsumerSource{consumers: map[int32]partitionConsumer{
		0: closedPartitionConsumer([]*sarama.ConsumerMessage{
			{Partition: 0, Offset: 0, Value: dlqValue(t, domain.AggregateTypeOrder, "order-1", domain.EventTypeOrderCreated, `{}`)},
			{Partition: 0, Offset: 1, Value: []byte(`{"foo":"bar"}`)},
		}),
		2: closedPartitionConsumer([]*sarama.ConsumerMessage{
			{Partition: 2, Offset: 0, Value: dlqValue(t, domain.AggregateTypeProduct, "p-1", domain.EventTypeProductCreated, `{}`)},
		}),
	}}

	r := &replayer{
		cfg:      config{sourceTopic: kafka.TopicDeadLetterQueue, limit: 10, idleTimeout: 20 * time.Millisecond},
		client:   client,
		consumer: consumer,
	}
	stats, err := r.run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.processed != 3 || stats.replayed != 2 || stats.skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(consumer.calls) != 2 || consumer.calls[0].partition != 0 {
		t.Fatalf("expected partitions in ascending order, got %+v", consumer.calls)
	}
}

func TestReplayer_ExecutePublishesOriginalEvent(t *testing.T) {
	client := &stubOffsetClient{partitions: []int32{0}, offsets: map[int32]offsetRange{0: {oldest: 0, newest: 1}}}
	consumer := &stubPartitionConsumerSource{consumers: map[int32]partitionConsumer{
		0: closedPartitionConsumer([]*sarama.ConsumerMessage{
			{Partition: 0, Offset: 0, Value: dlqValue(t, domain.AggregateTypeOrder, "order-1", domain.EventTypeOrderCreated, `{"order_id":"order-1"}`)},
		}),
	}}
	publisher := &stubPublisher{}

	r := &replayer{
		cfg:       config{sourceTopic: kafka.TopicDeadLetterQueue, limit: 10, execute: true, idleTimeout: 20 * time.Millisecond},
		client:    client,
		consumer:  consumer,
		publisher: publisher,
	}
	stats, err := r.run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.replayed != 1 || len(publisher.calls) != 1 {
		t.Fatalf("expected one publish, got stats=%+v calls=%d", stats, len(publisher.calls))
	}

	call := publisher.calls[0]
	if call.topic != kafka.TopicOrderEvents || call.key != "order-1" {
		t.Fatalf("unexpected publish target: %+v", call)
	}
	envelope, ok := call.event.(kafka.Envelope)
	if !ok || string(envelope.Payload) != `{"order_id":"order-1"}` {
		t.Fatalf("unexpected replayed envelope: %#v", call.event)
	}
	if call.headers[kafka.HeaderOutboxID] != "outbox-1" {
		t.Fatalf("unexpected headers: %+v", call.headers)
	}
}

func TestReplayer_Errors(t *testing.T) {
	cfg := config{sourceTopic: kafka.TopicDeadLetterQueue, limit: 1, execute: true, idleTimeout: 20 * time.Millisecond}

	if _, err := (&replayer{cfg: cfg}).run(context.Background()); err == nil {
		t.Fatal("expected missing deps error")
	}

	client := &stubOffsetClient{partitions: []int32{0}, offsets: map[int32]offsetRange{0: {oldest: 0, newest: 1}}}
	if _, err := (&replayer{cfg: cfg, client: client, consumer: &stubPartitionConsumerSource{}}).run(context.Background()); err == nil {
		t.Fatal("expected missing publisher error")
	}

	offsetErr := &stubOffsetClient{partitions: []int32{0}, offsetErr: map[int32]error{0: errors.New("offset")}}
	r := &replayer{cfg: cfg, client: offsetErr, consumer: &stubPartitionConsumerSource{}, publisher: &stubPublisher{}}
	if _, err := r.run(context.Background()); err == nil {
		t.Fatal("expected offset error")
	}

	consumer := &stubPartitionConsumerSource{consumers: map[int32]partitionConsumer{
		0: closedPartitionConsumer([]*sarama.ConsumerMessage{
			{Partition: 0, Offset: 0, Value: dlqValue(t, domain.AggregateTypeOrder, "order-1", domain.EventTypeOrderCreated, `{}`)},
		}),
	}}
	r = &replayer{cfg: cfg, client: client, consumer: consumer, publisher: &stubPublisher{err: errors.New("send fail")}}
	if _, err := r.run(context.Background()); err == nil || !strings.Contains(err.Error(), "publish replay message") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestReplayer_IdleTimeoutAndContext(t *testing.T) {
	client := &stubOffsetClient{partitions: []int32{0}, offsets: map[int32]offsetRange{0: {oldest: 0, newest: 2}}}
	cfg := config{sourceTopic: kafka.TopicDeadLetterQueue, limit: 1, idleTimeout: 10 * time.Millisecond}

	idle := &stubPartitionConsumer{messages: make(chan *sarama.ConsumerMessage), errors: make(chan *sarama.ConsumerError)}
	r := &replayer{cfg: cfg, client: client, consumer: &stubPartitionConsumerSource{consumers: map[int32]partitionConsumer{0: idle}}}
	stats, err := r.run(context.Background())
	if err != nil || stats.processed != 0 {
		t.Fatalf("expected idle exit, got stats=%+v err=%v", stats, err)
	}
	if !idle.closed {
		t.Fatal("expected partition consumer to be closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := &stubPartitionConsumer{messages: make(chan *sarama.ConsumerMessage), errors: make(chan *sarama.ConsumerError)}
	r = &replayer{cfg: cfg, client: client, consumer: &stubPartitionConsumerSource{consumers: map[int32]partitionConsumer{0: blocked}}}
	if _, err := r.run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestRun_UsesDependencies(t *testing.T) {
	client := &stubOffsetClient{partitions: []int32{0}, offsets: map[int32]offsetRange{0: {oldest: 0, newest: 0}}}
	consumer := &stubPartitionConsumerSource{}
	publisher := &stubPublisher{}

	original := newReplayDependencies
	newReplayDependencies = func(config) (offsetClient, partitionConsumerSource, replayPublisher, error) {
		return client, consumer, publisher, nil
	}
	t.Cleanup(func() { newReplayDependencies = original })

	cfg := config{sourceTopic: kafka.TopicDeadLetterQueue, limit: 1, execute: true, idleTimeout: 10 * time.Millisecond}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !client.closed || !consumer.closed || !publisher.closed {
		t.Fatal("expected all dependencies to be closed")
	}
}

type offsetRange struct {
	oldest int64
	newest int64
}

type stubOffsetClient struct {
	partitions []int32
	offsets    map[int32]offsetRange
	offsetErr  map[int32]error
	closed     bool
}

func (s *stubOffsetClient) GetOffset(_ string, partition int32, marker int64) (int64, error) {
	if err, ok := s.offsetErr[partition]; ok {
		return 0, err
	}

	r := s.offsets[partition]
	switch marker {
	case sarama.OffsetOldest:
		return r.oldest, nil
	case sarama.OffsetNewest:
		return r.newest, nil
	default:
		return 0, fmt.Errorf("unsupported marker %d", marker)
	}
}

func (s *stubOffsetClient) Partitions(string) ([]int32, error) {
	return append([]int32(nil), s.partitions...), nil
}

func (s *stubOffsetClient) Close() error {
	s.closed = true
	return nil
}

type consumeCall struct {
	partition int32
	offset    int64
}

type stubPartitionConsumerSource struct {
	consumers map[int32]partitionConsumer
	calls     []consumeCall
	closed    bool
}

func (s *stubPartitionConsumerSource) ConsumePartition(_ string, partition int32, offset int64) (partitionConsumer, error) {
	s.calls = append(s.calls, consumeCall{partition: partition, offset: offset})
	pc, ok := s.consumers[partition]
	if !ok {
		return nil, fmt.Errorf("partition %d not configured", partition)
	}
	return pc, nil
}

func (s *stubPartitionConsumerSource) Close() error {
	s.closed = true
	return nil
}

type stubPartitionConsumer struct {
	messages chan *sarama.ConsumerMessage
	errors   chan *sarama.ConsumerError
	closed   bool
}

func (s *stubPartitionConsumer) Messages() <-chan *sarama.ConsumerMessage { return s.messages }
func (s *stubPartitionConsumer) Errors() <-chan *sarama.ConsumerError     { return s.errors }
func (s *stubPartitionConsumer) Close() error {
	s.closed = true
	return nil
}

func closedPartitionConsumer(messages []*sarama.ConsumerMessage) *stubPartitionConsumer {
	msgCh := make(chan *sarama.ConsumerMessage, len(messages))
	errCh := make(chan *sarama.ConsumerError)
	for _, msg := range messages {
		msgCh <- msg
	}
	close(msgCh)
	close(errCh)
	return &stubPartitionConsumer{messages: msgCh, errors: errCh}
}

type publishCall struct {
	topic   string
	key     string
	event   any
	headers map[string]string
}

type stubPublisher struct {
	err    error
	calls  []publishCall
	closed bool
}

func (s *stubPublisher) PublishEvent(_ context.Context, topic, key string, event any, headers map[string]string) error {
	s.calls = append(s.calls, publishCall{topic: topic, key: key, event: event, headers: headers})
	return s.err
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}
