package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JobHandler runs one job. A returned error nacks the delivery to the DLQ.
type JobHandler func(ctx context.Context, jobID string) error

// Delivery is the part of amqp.Delivery the pool needs.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type ackDelivery struct{ d amqp.Delivery }

func (a ackDelivery) Ack(multiple bool) error { return a.d.Ack(multiple) }
func (a ackDelivery) Nack(multiple, requeue bool) error { return a.d.Nack(multiple, requeue) }

// Consume reads the queue with prefetch = concurrency and fans deliveries
// out to that many workers until ctx is cancelled.
func Consume(ctx context.Context, url, queue string, concurrency int, handle JobHandler) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := DeclareTopology(ch, queue); err != nil {
		return err
	}
	if err := ch.Qos(concurrency, 0, false); err != nil {
		return err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	log.Printf("[worker] started queue=%s concurrency=%d", queue, concurrency)

	in := make(chan rawJob, concurrency*2)
	done := runPool(ctx, concurrency, in, handle)

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("[worker] shutting down")
			close(in)
			<-done
			return nil

		case d, ok := <-msgs:
			if !ok {
				close(in)
				<-done
				return errors.New("rabbitmq: delivery channel closed")
			}
			in <- rawJob{body: d.Body, ack: ackDelivery{d}}
		}
	}
}

type rawJob struct {
	body []byte
	ack  Delivery
}

// runPool starts n workers draining in. The returned channel closes once
// in is closed and every worker has finished.
func runPool(ctx context.Context, n int, in <-chan rawJob, handle JobHandler) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(workerID int) {
			defer wg.Done()
			for j := range in {
				process(ctx, workerID, j, handle)
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func process(ctx context.Context, workerID int, j rawJob, handle JobHandler) {
	var m JobMessage
	if err := json.Unmarshal(j.body, &m); err != nil || m.JobID == "" {
		log.Printf("[worker] bad message worker=%d err=%v", workerID, err)
		_ = j.ack.Nack(false, false)
		return
	}

	start := time.Now()
	if err := handle(ctx, m.JobID); err != nil {
		log.Printf("[worker] job failed worker=%d job=%s cost=%s err=%v", workerID, m.JobID, time.Since(start), err)
		_ = j.ack.Nack(false, false)
		return
	}
	if err := j.ack.Ack(false); err != nil {
		log.Printf("[worker] ack failed worker=%d job=%s err=%v", workerID, m.JobID, err)
	}
	if cost := time.Since(start); cost > 2*time.Second {
		log.Printf("[worker] slow job job=%s cost=%s", m.JobID, cost)
	}
}
