package order

import (
	"fmt"
	"time"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"
	"kafe-backend/internal/permission"
	appmetrics "kafe-backend/prometheus"

	"github.com/gofiber/fiber/v2"
)

type OrderItemRequest struct {
	MenuItemID          string `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

type CreateOrderRequest struct {
	BranchID      uint               `json:"branch_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	OrderType     string             `json:"order_type"` // dine_in, takeaway, delivery
	Items         []OrderItemRequest `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type OrderItemResponse struct {
	ID                  uint    `json:"id"`
	MenuItemID          string  `json:"menu_item_id"`
	ItemName            string  `json:"item_name,omitempty"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	TotalPrice          float64 `json:"total_price"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

type OrderResponse struct {
	ID            uint               `json:"id"`
	BranchID      uint               `json:"branch_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	TotalAmount   float64            `json:"total_amount"`
	Status        models.OrderStatus `json:"status"`
	OrderType     string             `json:"order_type"`
	CreatedAt     string             `json:"created_at"`
	CompletedAt   string             `json:"completed_at,omitempty"`
	Items         []OrderItemResponse `json:"items"`
}

// Geçerli durum geçişleri
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderReady, models.OrderCancelled},
	models.OrderReady:     {models.OrderCompleted, models.OrderCancelled},
}

var validOrderTypes = map[string]bool{
	"dine_in":  true,
	"takeaway": true,
	"delivery": true,
}

func toOrderResponse(o models.Order) OrderResponse {
	res := OrderResponse{
		ID:            o.ID,
		BranchID:      o.BranchID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount,
		Status:        o.Status,
		OrderType:     o.OrderType,
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.CompletedAt != nil {
		res.CompletedAt = o.CompletedAt.Format("2006-01-02 15:04:05")
	}
	for _, it := range o.Items {
		res.Items = append(res.Items, OrderItemResponse{
			ID:                  it.ID,
			MenuItemID:          it.MenuItemID,
			ItemName:            it.MenuItem.Name,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	return res
}

// POST /api/orders (full_access)
// Tutarlar menü fiyatlarından hesaplanır; istemciden fiyat alınmaz.
func CreateOrderHandler(publisher *Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.BranchID == 0 || len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "branch_id ve en az bir kalem zorunlu")
		}
		if body.OrderType == "" {
			body.OrderType = "dine_in"
		}
		if !validOrderTypes[body.OrderType] {
			return fiber.NewError(fiber.StatusBadRequest, "order_type dine_in/takeaway/delivery olmalı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, body.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		order := models.Order{
			BranchID:      body.BranchID,
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			Status:        models.OrderPending,
			OrderType:     body.OrderType,
		}

		total := 0.0
		for _, reqItem := range body.Items {
			if reqItem.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalem miktarı pozitif olmalı")
			}

			var menuItem models.MenuItem
			if err := database.DB.First(&menuItem, "id = ?", reqItem.MenuItemID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı: "+reqItem.MenuItemID)
			}
			if menuItem.BranchID != body.BranchID {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün bu şubeye ait değil: "+menuItem.Name)
			}
			if !menuItem.IsAvailable {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün şu an satışta değil: "+menuItem.Name)
			}

			lineTotal := float64(reqItem.Quantity) * menuItem.Price
			total += lineTotal

			order.Items = append(order.Items, models.OrderItem{
				MenuItemID:          menuItem.ID,
				Quantity:            reqItem.Quantity,
				UnitPrice:           menuItem.Price,
				TotalPrice:          lineTotal,
				SpecialInstructions: reqItem.SpecialInstructions,
			})
		}
		order.TotalAmount = total

		if err := database.DB.Create(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş oluşturulamadı")
		}

		appmetrics.OrdersCreatedTotal.Inc()
		publisher.PublishOrderCreated(c.Context(), &order)

		database.DB.Preload("Items.MenuItem").First(&order, order.ID)
		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// GET /api/orders?branch_id=&status=&date=
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := database.DB.Preload("Items.MenuItem").Order("created_at DESC")

		if bidStr := c.Query("branch_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			if err := permission.CheckBranch(database.DB, userID, role, bid, models.PermissionViewOnly); err != nil {
				return permission.AsFiberError(err)
			}
			q = q.Where("branch_id = ?", bid)
		} else {
			scope, err := permission.BranchScope(database.DB, userID, role)
			if err != nil {
				return permission.AsFiberError(err)
			}
			if scope != nil {
				q = q.Where("branch_id IN ?", scope)
			}
		}

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date formatı YYYY-MM-DD olmalı")
			}
			q = q.Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour))
		}

		var orders []models.Order
		if err := q.Limit(200).Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		res := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, toOrderResponse(o))
		}
		return c.JSON(res)
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.Preload("Items.MenuItem").First(&order, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, order.BranchID, models.PermissionViewOnly); err != nil {
			return permission.AsFiberError(err)
		}

		return c.JSON(toOrderResponse(order))
	}
}

// PUT /api/orders/:id/status (full_access)
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.First(&order, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, order.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var body UpdateOrderStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		valid := false
		for _, next := range allowedTransitions[order.Status] {
			if next == body.Status {
				valid = true
				break
			}
		}
		if !valid {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("'%s' durumundan '%s' durumuna geçilemez", order.Status, body.Status))
		}

		order.Status = body.Status
		if body.Status == models.OrderCompleted {
			now := time.Now()
			order.CompletedAt = &now
		}

		if err := database.DB.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş güncellenemedi")
		}

		database.DB.Preload("Items.MenuItem").First(&order, order.ID)
		return c.JSON(toOrderResponse(order))
	}
}
