package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/platform"
)

// Direct deterministically extracts entities and relationships from a
// structured platform.Record by dispatching on its data family. Only the
// contact, calendar-event, photo and phone-call families are handled; any
// other family returns an error.
func Direct(rec platform.Record, family graphtypes.DataFamily) (Result, error) {
	result := Result{SourceID: rec.ID, SourceType: family}
	switch family {
	case graphtypes.FamilyContact:
		directContact(rec, &result)
	case graphtypes.FamilyEvent:
		directCalendarEvent(rec, &result)
	case graphtypes.FamilyPhoto:
		directPhoto(rec, &result)
	case graphtypes.FamilyCall:
		directPhoneCall(rec, &result)
	default:
		return result, fmt.Errorf("extract: no direct dispatch for family %q", family)
	}
	return result, nil
}

func str(fields map[string]any, key string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func strSlice(fields map[string]any, key string) []string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func floatVal(fields map[string]any, key string) (float64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch f := v.(type) {
	case float64:
		return f, true
	case string:
		if parsed, err := strconv.ParseFloat(f, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func directContact(rec platform.Record, result *Result) {
	name := str(rec.Fields, "name")
	if name == "" {
		return
	}
	person := ExtractedEntity{
		Name:       name,
		Type:       graphtypes.TypePerson,
		Confidence: 1.0,
		Attributes: map[string]string{},
	}
	if org := str(rec.Fields, "organization"); org != "" {
		person.Attributes["organization"] = org
	}
	if job := str(rec.Fields, "job_title"); job != "" {
		person.Attributes["job_title"] = job
	}
	for i, email := range strSlice(rec.Fields, "emails") {
		person.Attributes[fmt.Sprintf("email_%d", i)] = email
	}
	for i, phone := range strSlice(rec.Fields, "phones") {
		person.Attributes[fmt.Sprintf("phone_%d", i)] = phone
	}
	result.Entities = append(result.Entities, person)

	if org := str(rec.Fields, "organization"); org != "" {
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: org, Type: graphtypes.TypeOrganization, Confidence: 1.0,
		})
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			Source: name, Target: org, Type: graphtypes.RelWorksAt, Confidence: 1.0,
		})
	}
}

func directCalendarEvent(rec platform.Record, result *Result) {
	title := str(rec.Fields, "title")
	if title == "" {
		return
	}
	event := ExtractedEntity{Name: title, Type: graphtypes.TypeEvent, Confidence: 1.0}
	result.Entities = append(result.Entities, event)

	if loc := str(rec.Fields, "location"); loc != "" {
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: loc, Type: graphtypes.TypeLocation, Confidence: 1.0,
		})
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			Source: title, Target: loc, Type: graphtypes.RelLocatedIn, Confidence: 1.0,
		})
	}

	for _, attendee := range strSlice(rec.Fields, "attendees") {
		if attendee == "" {
			continue
		}
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: attendee, Type: graphtypes.TypePerson, Confidence: 1.0,
		})
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			Source: attendee, Target: title, Type: graphtypes.RelAttendedBy, Confidence: 1.0,
		})
	}
}

func directPhoto(rec platform.Record, result *Result) {
	photoName := str(rec.Fields, "id")
	if photoName == "" {
		photoName = rec.ID
	}
	photo := ExtractedEntity{Name: photoName, Type: graphtypes.TypePhoto, Confidence: 1.0}
	result.Entities = append(result.Entities, photo)

	locName := str(rec.Fields, "location_name")
	if locName == "" {
		if lat, okLat := floatVal(rec.Fields, "latitude"); okLat {
			if lon, okLon := floatVal(rec.Fields, "longitude"); okLon {
				locName = fmt.Sprintf("Location (%.4f, %.4f)", lat, lon)
			}
		}
	}
	if locName != "" {
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: locName, Type: graphtypes.TypeLocation, Confidence: 1.0,
		})
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			Source: photoName, Target: locName, Type: graphtypes.RelTakenAt, Confidence: 1.0,
		})
	}

	if created := str(rec.Fields, "created_at"); created != "" {
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: created, Type: graphtypes.TypeDate, Confidence: 1.0,
		})
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			Source: photoName, Target: created, Type: graphtypes.RelTakenOn, Confidence: 1.0,
		})
	}

	for _, person := range strSlice(rec.Fields, "detected_people") {
		if person == "" {
			continue
		}
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: person, Type: graphtypes.TypePerson, Confidence: 1.0,
		})
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			Source: person, Target: photoName, Type: graphtypes.RelPicturedIn, Confidence: 1.0,
		})
	}
}

func directPhoneCall(rec platform.Record, result *Result) {
	var callerName string
	if contactName := str(rec.Fields, "contact_name"); contactName != "" {
		callerName = contactName
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: contactName, Type: graphtypes.TypePerson, Confidence: 1.0,
		})
	} else if number := str(rec.Fields, "number"); number != "" {
		callerName = number
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: number, Type: graphtypes.TypePhone, Confidence: 1.0,
		})
	}

	if ts := str(rec.Fields, "timestamp"); ts != "" {
		result.Entities = append(result.Entities, ExtractedEntity{
			Name: ts, Type: graphtypes.TypeDate, Confidence: 1.0,
		})
		if callerName != "" {
			result.Relationships = append(result.Relationships, ExtractedRelationship{
				Source: callerName, Target: ts, Type: graphtypes.RelMadeCall, Confidence: 1.0,
			})
		}
	}
}
