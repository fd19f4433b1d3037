package usecases

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"

	"rental-server/cache"
	"rental-server/entities"
	"rental-server/repositories"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PropertyUseCase struct {
	PropertyRepo repositories.PropertyRepository
	Cache        cache.PropertyCache
}

func NewPropertyUseCase(propertyRepo repositories.PropertyRepository, c cache.PropertyCache) *PropertyUseCase {
	return &PropertyUseCase{PropertyRepo: propertyRepo, Cache: c}
}

// List returns a page of active properties. Out of range values fall back to defaults.
func (uc *PropertyUseCase) List(ctx context.Context, limit, offset int) ([]entities.Property, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	properties, err := uc.PropertyRepo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = []entities.Property{}
	}
	return properties, nil
}

// Get looks a property up by id whether or not it is active.
func (uc *PropertyUseCase) Get(ctx context.Context, id string) (*entities.Property, error) {
	if p, ok := uc.Cache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := uc.PropertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	uc.Cache.Set(ctx, p)
	return p, nil
}

// Create validates a raw JSON body and stores a listing owned by hostID.
func (uc *PropertyUseCase) Create(ctx context.Context, fields map[string]interface{}, hostID string) (*entities.Property, error) {
	var missing []string
	p := &entities.Property{HostID: hostID, IsActive: true}

	var ok bool
	if p.Title, ok = asString(fields["title"]); !ok {
		missing = append(missing, "title")
	}
	if p.Description, ok = asString(fields["description"]); !ok {
		missing = append(missing, "description")
	}
	if p.Location, ok = asString(fields["location"]); !ok {
		missing = append(missing, "location")
	}
	if p.PricePerNight, ok = asPositiveDecimal(fields["pricePerNight"]); !ok {
		missing = append(missing, "pricePerNight")
	}
	if p.MaxGuests, ok = asPositiveInt(fields["maxGuests"]); !ok {
		missing = append(missing, "maxGuests")
	}
	if p.Bedrooms, ok = asPositiveInt(fields["bedrooms"]); !ok {
		missing = append(missing, "bedrooms")
	}
	if p.Bathrooms, ok = asPositiveInt(fields["bathrooms"]); !ok {
		missing = append(missing, "bathrooms")
	}
	if len(missing) > 0 {
		return nil, fail(ErrValidation, "Missing or invalid fields: %s", strings.Join(missing, ", "))
	}

	for key, dst := range map[string]**string{"latitude": &p.Latitude, "longitude": &p.Longitude} {
		v, present := fields[key]
		if !present || v == nil {
			continue
		}
		s, ok := asNumericString(v)
		if !ok {
			return nil, fail(ErrValidation, "%s must be numeric", key)
		}
		*dst = &s
	}
	for key, dst := range map[string]*datatypes.JSONSlice[string]{"amenities": &p.Amenities, "images": &p.Images} {
		v, present := fields[key]
		if !present {
			continue
		}
		list, ok := asStringList(v)
		if !ok {
			return nil, fail(ErrValidation, "%s must be a list of strings", key)
		}
		*dst = list
	}

	if err := uc.PropertyRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the allow-listed keys of fields. Anything else is ignored.
func (uc *PropertyUseCase) Update(ctx context.Context, id string, fields map[string]interface{}) (*entities.Property, error) {
	columns := map[string]interface{}{}

	for key, v := range fields {
		switch key {
		case "title", "description", "location":
			s, ok := asString(v)
			if !ok {
				return nil, fail(ErrValidation, "%s must be a non-empty string", key)
			}
			columns[key] = s
			if key == "title" {
				columns["slug"] = slug.Make(s)
			}
		case "pricePerNight":
			s, ok := asPositiveDecimal(v)
			if !ok {
				return nil, fail(ErrValidation, "pricePerNight must be a positive number")
			}
			columns["price_per_night"] = s
		case "maxGuests", "bedrooms", "bathrooms":
			n, ok := asPositiveInt(v)
			if !ok {
				return nil, fail(ErrValidation, "%s must be a positive integer", key)
			}
			columns[columnFor[key]] = n
		case "amenities", "images":
			list, ok := asStringList(v)
			if !ok {
				return nil, fail(ErrValidation, "%s must be a list of strings", key)
			}
			columns[key] = datatypes.JSONSlice[string](list)
		}
	}

	p, err := uc.PropertyRepo.Update(ctx, id, columns)
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	uc.Cache.Invalidate(ctx, id)
	return p, nil
}

// SoftDelete deactivates a listing. A second delete reports not found.
func (uc *PropertyUseCase) SoftDelete(ctx context.Context, id string) (*entities.Property, error) {
	p, err := uc.PropertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	if !p.IsActive {
		return nil, fail(ErrNotFound, "Property not found")
	}
	p, err = uc.PropertyRepo.Update(ctx, id, map[string]interface{}{"is_active": false})
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	uc.Cache.Invalidate(ctx, id)
	return p, nil
}

var columnFor = map[string]string{
	"maxGuests": "max_guests",
	"bedrooms":  "bedrooms",
	"bathrooms": "bathrooms",
}
