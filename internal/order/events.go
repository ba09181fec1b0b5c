package order

import (
	"context"
	"encoding/json"
	"time"

	"kafe-backend/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const orderCreatedQueue = "orders.created"

// Publisher - yeni siparişleri barista ekranı gibi tüketiciler için
// RabbitMQ'ya yayınlar. URL yapılandırılmamışsa nil olarak taşınır ve
// yayınlama sessizce atlanır; sipariş akışı kuyruk olmadan da çalışır.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

type orderCreatedEvent struct {
	OrderID     uint    `json:"order_id"`
	BranchID    uint    `json:"branch_id"`
	OrderType   string  `json:"order_type"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
	CreatedAt   string  `json:"created_at"`
}

func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(orderCreatedQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.ch.Close()
	p.conn.Close()
}

// PublishOrderCreated - best-effort yayın; kuyruk hatası siparişi bozmaz.
func (p *Publisher) PublishOrderCreated(ctx context.Context, o *models.Order) {
	if p == nil {
		return
	}

	event := orderCreatedEvent{
		OrderID:     o.ID,
		BranchID:    o.BranchID,
		OrderType:   o.OrderType,
		TotalAmount: o.TotalAmount,
		ItemCount:   len(o.Items),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("sipariş eventi serileştirilemedi", zap.Error(err))
		return
	}

	err = p.ch.PublishWithContext(ctx, "", orderCreatedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("sipariş eventi yayınlanamadı", zap.Uint("order_id", o.ID), zap.Error(err))
	}
}
