package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusUnpaid         OrderStatus = "unpaid"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusWaitingConfirm OrderStatus = "waiting_confirm"
	OrderStatusNearDeadline   OrderStatus = "near_deadline"
	OrderStatusOverdue        OrderStatus = "overdue"

	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusRefunding OrderStatus = "refunding"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transition is expected.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusRefunding, OrderStatusCancelled:
		return true
	}
	return false
}

type ServiceStatus string

const (
	ServiceStatusAssigned ServiceStatus = "assigned"
	ServiceStatusPending  ServiceStatus = "pending"
)

// Field names as they appear in stored records.
const (
	FieldID                = "id"
	FieldBuyerID           = "buyerId"
	FieldArtistID          = "artistId"
	FieldServiceID         = "serviceId"
	FieldProductID         = "productId"
	FieldStatus            = "status"
	FieldRefundStatus      = "refundStatus"
	FieldPrice             = "price"
	FieldTotalPrice        = "totalPrice"
	FieldRefundAmount      = "refundAmount"
	FieldProductName       = "productName"
	FieldProductImage      = "productImage"
	FieldArtistName        = "artistName"
	FieldArtistAvatar      = "artistAvatar"
	FieldServiceName       = "serviceName"
	FieldServiceAvatar     = "serviceAvatar"
	FieldBuyerAvatar       = "buyerAvatar"
	FieldItems             = "items"
	FieldQuantity          = "quantity"
	FieldCreateTime        = "createTime"
	FieldCompletedAt       = "completedAt"
	FieldRefundCompletedAt = "refundCompletedAt"
	FieldRefundHistory     = "refundHistory"
	FieldWasOverdue        = "wasOverdue"
	FieldOverdueDays       = "overdueDays"
	FieldDeadline          = "deadline"
	FieldDeliveryDays      = "deliveryDays"
	FieldStatusText        = "statusText"
	FieldStatusClass       = "statusClass"
	FieldServiceStatus     = "serviceStatus"
	FieldNeedsService      = "needsService"
)

type Item struct {
	ProductID    string
	ProductName  string
	ProductImage string
	Quantity     int
	Price        decimal.Decimal

	Attrs Record
}

type Order struct {
	ID        string
	BuyerID   string
	ArtistID  string
	ServiceID string
	ProductID string

	Status       OrderStatus
	RefundStatus string
	WasOverdue   bool
	OverdueDays  int
	DeliveryDays int

	Price        decimal.Decimal
	TotalPrice   decimal.Decimal
	RefundAmount decimal.Decimal

	ProductName   string
	ProductImage  string
	ArtistName    string
	ArtistAvatar  string
	ServiceName   string
	ServiceAvatar string
	BuyerAvatar   string

	Items []Item

	CreateTime        Timestamp
	CompletedAt       Timestamp
	RefundCompletedAt Timestamp
	Deadline          Timestamp
	RefundHistory     []any

	StatusText    string
	StatusClass   string
	ServiceStatus ServiceStatus
	NeedsService  bool

	// Attrs is the merged record the order was built from. Keys the typed
	// fields do not model pass through to the output untouched.
	Attrs Record
}

// Amount is the order total, falling back to the unit price.
func (o Order) Amount() decimal.Decimal {
	if !o.TotalPrice.IsZero() {
		return o.TotalPrice
	}
	return o.Price
}

// OrderFromRecord builds a typed order from a loosely-shaped record. It never
// fails: fields of an unexpected type resolve to their zero value.
func OrderFromRecord(r Record) Order {
	o := Order{
		ID:                r.String(FieldID),
		BuyerID:           r.String(FieldBuyerID),
		ArtistID:          r.String(FieldArtistID),
		ServiceID:         r.String(FieldServiceID),
		ProductID:         r.String(FieldProductID),
		Status:            OrderStatus(r.String(FieldStatus)),
		RefundStatus:      r.String(FieldRefundStatus),
		WasOverdue:        AsBool(r[FieldWasOverdue]),
		OverdueDays:       AsInt(r[FieldOverdueDays]),
		DeliveryDays:      AsInt(r[FieldDeliveryDays]),
		Price:             AsDecimal(r[FieldPrice]),
		TotalPrice:        AsDecimal(r[FieldTotalPrice]),
		RefundAmount:      AsDecimal(r[FieldRefundAmount]),
		ProductName:       r.String(FieldProductName),
		ProductImage:      r.String(FieldProductImage),
		ArtistName:        r.String(FieldArtistName),
		ArtistAvatar:      r.String(FieldArtistAvatar),
		ServiceName:       r.String(FieldServiceName),
		ServiceAvatar:     r.String(FieldServiceAvatar),
		BuyerAvatar:       r.String(FieldBuyerAvatar),
		CreateTime:        NewTimestamp(r[FieldCreateTime]),
		CompletedAt:       NewTimestamp(r[FieldCompletedAt]),
		RefundCompletedAt: NewTimestamp(r[FieldRefundCompletedAt]),
		Deadline:          NewTimestamp(r[FieldDeadline]),
		RefundHistory:     AsSlice(r[FieldRefundHistory]),
		StatusText:        r.String(FieldStatusText),
		StatusClass:       r.String(FieldStatusClass),
		ServiceStatus:     ServiceStatus(r.String(FieldServiceStatus)),
		NeedsService:      AsBool(r[FieldNeedsService]),
		Attrs:             r.Clone(),
	}
	for _, raw := range AsSlice(r[FieldItems]) {
		itemRec, ok := AsRecord(raw)
		if !ok {
			continue
		}
		o.Items = append(o.Items, Item{
			ProductID:    itemRec.String(FieldProductID),
			ProductName:  itemRec.String(FieldProductName),
			ProductImage: itemRec.String(FieldProductImage),
			Quantity:     AsInt(itemRec[FieldQuantity]),
			Price:        AsDecimal(itemRec[FieldPrice]),
			Attrs:        itemRec.Clone(),
		})
	}
	return o
}

// Record renders the order in its output shape: every input field, the typed
// fields as they stand now, and the derived display fields.
func (o Order) Record() Record {
	out := o.Attrs.Clone()
	if out == nil {
		out = Record{}
	}

	setString(out, FieldID, o.ID)
	setString(out, FieldBuyerID, o.BuyerID)
	setString(out, FieldArtistID, o.ArtistID)
	setString(out, FieldServiceID, o.ServiceID)
	setString(out, FieldProductID, o.ProductID)
	setString(out, FieldStatus, string(o.Status))
	setString(out, FieldRefundStatus, o.RefundStatus)
	setString(out, FieldProductName, o.ProductName)

	if o.WasOverdue || out.Has(FieldWasOverdue) {
		out[FieldWasOverdue] = o.WasOverdue
	}
	if o.OverdueDays != 0 || out.Has(FieldOverdueDays) {
		out[FieldOverdueDays] = o.OverdueDays
	}

	setDecimal(out, FieldRefundAmount, o.RefundAmount)
	setTimestamp(out, FieldCompletedAt, o.CompletedAt)
	setTimestamp(out, FieldRefundCompletedAt, o.RefundCompletedAt)
	setTimestamp(out, FieldDeadline, o.Deadline)
	if o.RefundHistory != nil || out.Has(FieldRefundHistory) {
		out[FieldRefundHistory] = o.RefundHistory
	}

	if len(o.Items) > 0 {
		items := make([]any, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, it.Record())
		}
		out[FieldItems] = items
	}

	// Display fields are always present in the output shape.
	out[FieldArtistName] = o.ArtistName
	out[FieldServiceName] = o.ServiceName
	out[FieldProductImage] = o.ProductImage
	out[FieldArtistAvatar] = o.ArtistAvatar
	out[FieldServiceAvatar] = o.ServiceAvatar
	out[FieldBuyerAvatar] = o.BuyerAvatar
	out[FieldStatusText] = o.StatusText
	out[FieldStatusClass] = o.StatusClass
	out[FieldServiceStatus] = string(o.ServiceStatus)
	out[FieldNeedsService] = o.NeedsService
	return out
}

// MarshalJSON emits the output record shape.
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Record())
}

func (it Item) Record() Record {
	out := it.Attrs.Clone()
	if out == nil {
		out = Record{}
	}
	setString(out, FieldProductID, it.ProductID)
	setString(out, FieldProductName, it.ProductName)
	out[FieldProductImage] = it.ProductImage
	return out
}

func setString(r Record, key, value string) {
	if value == "" && !r.Has(key) {
		return
	}
	if AsString(r[key]) == value {
		// keep the stored representation, e.g. numeric ids
		return
	}
	r[key] = value
}

func setDecimal(r Record, key string, value decimal.Decimal) {
	if value.IsZero() && !r.Has(key) {
		return
	}
	if AsDecimal(r[key]).Equal(value) {
		return
	}
	r[key] = json.Number(value.String())
}

func setTimestamp(r Record, key string, value Timestamp) {
	if value.IsZero() {
		if r.Has(key) && r[key] != nil && AsString(r[key]) != "" {
			r[key] = nil
		}
		return
	}
	r[key] = value.Raw
}
