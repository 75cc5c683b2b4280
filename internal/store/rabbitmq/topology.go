package rabbitmq

import amqp "github.com/rabbitmq/amqp091-go"

// JobMessage is the body of a queued generation job.
type JobMessage struct {
	JobID string `json:"job_id"`
}

// QueueDeclarer is satisfied by *amqp.Channel.
type QueueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// DeclareTopology declares the main queue and its dead-letter queue.
// Publisher and worker must agree on the arguments or the broker rejects the
// second declaration.
func DeclareTopology(ch QueueDeclarer, queue string) error {
	mainQ := queue
	dlqQ := queue + ".dlq"

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		mainQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqQ,
		},
	)
	return err
}
