package validators

import "go.mongodb.org/mongo-driver/bson"

// Collection $jsonSchema validators. Dates and time slots are stored as
// canonical strings ("2006-01-02", "15:04") so they sort and range-filter
// lexicographically.

const (
	datePattern = `^\d{4}-\d{2}-\d{2}$`
	timePattern = `^\d{2}:\d{2}$`
)

func Bookings() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"student_name", "phone", "status", "total_price", "occurrence_count", "created_at"},
			"properties": bson.M{
				"student_name":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
				"email":            bson.M{"bsonType": "string"},
				"phone":            bson.M{"bsonType": "string", "pattern": `^\+[1-9]\d{6,14}$`},
				"status":           bson.M{"enum": []string{"confirmed", "cancelled"}},
				"total_price":      bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				"occurrence_count": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
				"idempotency_key":  bson.M{"bsonType": "string"},
				"created_at":       bson.M{"bsonType": "date"},
			},
		},
	}
}

func BookingOccurrences() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"booking_id", "date", "time_slot", "teacher_id", "status"},
			"properties": bson.M{
				"booking_id": bson.M{"bsonType": "string"},
				"date":       bson.M{"bsonType": "string", "pattern": datePattern},
				"time_slot":  bson.M{"bsonType": "string", "pattern": timePattern},
				"teacher_id": bson.M{"bsonType": "string"},
				"status":     bson.M{"enum": []string{"confirmed", "cancelled"}},
			},
		},
	}
}

func TeacherSlotLocks() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"_id", "teacher_id", "date", "time_slot", "booking_id", "status", "booked_at"},
			"properties": bson.M{
				"_id":        bson.M{"bsonType": "string"},
				"teacher_id": bson.M{"bsonType": "string"},
				"date":       bson.M{"bsonType": "string", "pattern": datePattern},
				"time_slot":  bson.M{"bsonType": "string", "pattern": timePattern},
				"booking_id": bson.M{"bsonType": "string"},
				"status":     bson.M{"enum": []string{"confirmed", "cancelled"}},
				"booked_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func Holidays() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"date", "label"},
			"properties": bson.M{
				"date":  bson.M{"bsonType": "string", "pattern": datePattern},
				"label": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			},
		},
	}
}

func TimeSlots() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"day_of_week", "start_time", "teacher_ids"},
			"properties": bson.M{
				"day_of_week": bson.M{"enum": []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}},
				"start_time":  bson.M{"bsonType": "string", "pattern": timePattern},
				"teacher_ids": bson.M{"bsonType": "array", "minItems": 1, "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func Teachers() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"name"},
			"properties": bson.M{
				"name":   bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
				"phone":  bson.M{"bsonType": "string"},
				"email":  bson.M{"bsonType": "string"},
				"active": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func PriceTiers() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"min_classes", "max_classes", "price_per_class"},
			"properties": bson.M{
				"min_classes":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
				"max_classes":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
				"price_per_class": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func Students() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"name", "phone"},
			"properties": bson.M{
				"name":  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
				"phone": bson.M{"bsonType": "string"},
				"email": bson.M{"bsonType": "string"},
			},
		},
	}
}
