package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartRentalConsumer connects to RabbitMQ, declares the rental.created and
// rental.returned queues (durable), and starts consuming messages.  Each
// message is appended to logs/rental.log in a single-line, human-friendly
// format.  The function runs a reconnect loop; it keeps running and logs any
// processing errors while rejecting the offending message so the server
// continues operating.
func StartRentalConsumer() error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("rental-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("rental-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("rental-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{rentalCreatedQueue, rentalReturnedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    created, err := ch.Consume(rentalCreatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume %s: %w", rentalCreatedQueue, err)
    }
    returned, err := ch.Consume(rentalReturnedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume %s: %w", rentalReturnedQueue, err)
    }

    for {
        select {
        case d, ok := <-created:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrReject(d, handleCreated(d.Body))
        case d, ok := <-returned:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrReject(d, handleReturned(d.Body))
        }
    }
}

func ackOrReject(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("rental-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleCreated(body []byte) error {
    var ev RentalCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Copy rented | rental_id=%d | customer_id=%d | film_id=%d | unit_id=%d\n",
        ev.RentedAt, ev.RentalID, ev.CustomerID, ev.FilmID, ev.UnitID)
    return appendLog(line)
}

func handleReturned(body []byte) error {
    var ev RentalReturnedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Copy returned | rental_id=%d | customer_id=%d | film_id=%d\n",
        ev.ReturnedAt, ev.RentalID, ev.CustomerID, ev.FilmID)
    return appendLog(line)
}

func appendLog(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "rental.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
