package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/shared/money"
)

const bookingsCollection = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(ctx context.Context, db *mongo.Database) (*BookingRepository, error) {
	col := db.Collection(bookingsCollection)
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &BookingRepository{col: col}, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Save upserts guarded by the version read earlier; a stale version either matches nothing
// or collides with the existing _id.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrVersionConflict
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filterDocument(filter),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}

func filterDocument(f domainbooking.Filter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.VehicleID != 0 {
		q["vehicle_id"] = int(f.VehicleID)
	}
	if !f.CreatedBefore.IsZero() {
		q["created_at"] = bson.M{"$lt": f.CreatedBefore.UTC()}
	}
	return q
}

type bookingDocument struct {
	ID          string           `bson:"_id"`
	VehicleID   int              `bson:"vehicle_id"`
	VehicleName string           `bson:"vehicle_name"`
	Customer    customerDocument `bson:"customer"`
	StartDate   string           `bson:"start_date"`
	EndDate     string           `bson:"end_date"`
	Amount      int64            `bson:"amount"`
	Currency    string           `bson:"currency"`
	Notes       string           `bson:"notes"`
	Status      string           `bson:"status"`
	PaymentRef  string           `bson:"payment_ref"`
	CancelNote  string           `bson:"cancel_note"`
	CreatedAt   time.Time        `bson:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at"`
	Version     int64            `bson:"version"`
}

type customerDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:          string(b.ID),
		VehicleID:   int(b.VehicleID),
		VehicleName: b.VehicleName,
		Customer:    customerDocument{Name: b.Customer.Name, Email: b.Customer.Email, Phone: b.Customer.Phone},
		StartDate:   b.Range.Start.String(),
		EndDate:     b.Range.End.String(),
		Amount:      b.Total.Amount,
		Currency:    b.Total.Currency,
		Notes:       b.Notes,
		Status:      string(b.Status),
		PaymentRef:  b.PaymentRef,
		CancelNote:  b.CancelNote,
		CreatedAt:   b.CreatedAt.UTC(),
		UpdatedAt:   b.UpdatedAt.UTC(),
		Version:     b.Version,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	start, err := daterange.ParseDate(d.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := daterange.ParseDate(d.EndDate)
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:          domainbooking.BookingID(d.ID),
		VehicleID:   fleet.VehicleID(d.VehicleID),
		VehicleName: d.VehicleName,
		Customer:    domainbooking.Customer{Name: d.Customer.Name, Email: d.Customer.Email, Phone: d.Customer.Phone},
		Range:       daterange.DateRange{Start: start, End: end},
		Total:       money.Money{Amount: d.Amount, Currency: d.Currency},
		Notes:       d.Notes,
		Status:      domainbooking.Status(d.Status),
		PaymentRef:  d.PaymentRef,
		CancelNote:  d.CancelNote,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Version:     d.Version,
	}, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
