package document

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

const DetailsCollection = "appointment_details"

type DetailMongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewDetailMongoRepository(db *mongo.Database) *DetailMongoRepository {
	return &DetailMongoRepository{
		coll: db.Collection(DetailsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique appointmentId index. Safe to call on
// every boot.
func (r *DetailMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "appointmentId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("appointmentId_unique"),
	})
	return err
}

// --------------------------------------------------
// Write
// --------------------------------------------------

// CreateDetail upserts the full document, so a default one written by the
// consistency sweep between the row insert and this call is overwritten.
func (r *DetailMongoRepository) CreateDetail(
	ctx context.Context,
	d *models.AppointmentDetail,
) error {
	now := r.now()
	d.CreatedAt = now
	d.UpdatedAt = now

	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"appointmentId": d.AppointmentID},
		bson.M{
			"$set":         detailFields(d),
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return nil
}

// InsertDetailIfMissing never touches an existing document. Losing an
// insert race on the unique index counts as already present.
func (r *DetailMongoRepository) InsertDetailIfMissing(
	ctx context.Context,
	d *models.AppointmentDetail,
) (bool, error) {
	now := r.now()
	d.CreatedAt = now
	d.UpdatedAt = now

	fields := detailFields(d)
	fields["createdAt"] = now

	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"appointmentId": d.AppointmentID},
		bson.M{"$setOnInsert": fields},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return res.UpsertedCount > 0, nil
}

func detailFields(d *models.AppointmentDetail) bson.M {
	treatments := d.PriorTreatments
	if treatments == nil {
		treatments = []string{}
	}

	fields := bson.M{
		"appointmentId":   d.AppointmentID,
		"clientId":        d.ClientID,
		"petId":           d.PetID,
		"reason":          d.Reason,
		"symptoms":        d.Symptoms,
		"priorDiagnosis":  d.PriorDiagnosis,
		"priorTreatments": treatments,
		"notes":           d.Notes,
		"observations":    d.Observations,
		"status":          d.Status,
		"attended":        d.Attended,
		"updatedAt":       d.UpdatedAt,
	}
	if d.ActualDate != nil {
		fields["actualDate"] = d.ActualDate.UTC()
	}
	return fields
}

func (r *DetailMongoRepository) ReplaceClinical(
	ctx context.Context,
	ap *models.Appointment,
	c domain.Clinical,
) error {
	c = c.Normalized()
	return r.upsert(ctx, ap, bson.M{
		"reason":          c.Reason,
		"symptoms":        c.Symptoms,
		"priorDiagnosis":  c.PriorDiagnosis,
		"priorTreatments": c.PriorTreatments,
		"notes":           c.Notes,
		"attended":        false,
		"status":          string(domain.DetailStatusFor(domain.Status(ap.Status))),
	}, "actualDate")
}

func (r *DetailMongoRepository) ResetAttendance(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.upsert(ctx, ap, bson.M{
		"attended": false,
		"status":   string(domain.DetailStatusFor(domain.Status(ap.Status))),
	}, "actualDate")
}

func (r *DetailMongoRepository) SetDetailStatus(
	ctx context.Context,
	ap *models.Appointment,
	status domain.DetailStatus,
	observations *string,
) error {
	set := bson.M{"status": string(status)}
	if observations != nil {
		set["observations"] = *observations
	}
	return r.upsert(ctx, ap, set)
}

func (r *DetailMongoRepository) MarkAttendance(
	ctx context.Context,
	ap *models.Appointment,
	attended bool,
	at time.Time,
) error {
	return r.upsert(ctx, ap, bson.M{
		"attended":   attended,
		"actualDate": at.UTC(),
		"status":     string(domain.DetailStatusFor(domain.Status(ap.Status))),
	})
}

// upsert applies set to the appointment's document. When the document is
// missing it is created with empty clinical fields, so a row whose create
// step lost its document heals on the next write.
func (r *DetailMongoRepository) upsert(
	ctx context.Context,
	ap *models.Appointment,
	set bson.M,
	unset ...string,
) error {
	now := r.now()

	set["clientId"] = domain.DocumentKey(ap.ClientID)
	set["petId"] = domain.DocumentKey(ap.PetID)
	set["updatedAt"] = now

	onInsert := bson.M{
		"reason":          "",
		"symptoms":        "",
		"priorDiagnosis":  "",
		"priorTreatments": []string{},
		"notes":           "",
		"observations":    "",
		"attended":        false,
		"status":          string(domain.DetailStatusFor(domain.Status(ap.Status))),
		"createdAt":       now,
	}
	for k := range set {
		delete(onInsert, k)
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": onInsert,
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"appointmentId": domain.DocumentKey(ap.ID)},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *DetailMongoRepository) GetDetail(
	ctx context.Context,
	appointmentID string,
) (*models.AppointmentDetail, error) {

	var d models.AppointmentDetail
	err := r.coll.FindOne(ctx, bson.M{"appointmentId": appointmentID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d.PriorTreatments == nil {
		d.PriorTreatments = []string{}
	}
	return &d, nil
}

func (r *DetailMongoRepository) ExistingDetails(
	ctx context.Context,
	appointmentIDs []string,
) (map[string]bool, error) {

	found := make(map[string]bool, len(appointmentIDs))
	if len(appointmentIDs) == 0 {
		return found, nil
	}

	cur, err := r.coll.Find(
		ctx,
		bson.M{"appointmentId": bson.M{"$in": appointmentIDs}},
		options.Find().SetProjection(bson.M{"appointmentId": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			AppointmentID string `bson:"appointmentId"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		found[row.AppointmentID] = true
	}

	return found, cur.Err()
}

// Compile-time check
var _ domain.DetailRepository = (*DetailMongoRepository)(nil)
