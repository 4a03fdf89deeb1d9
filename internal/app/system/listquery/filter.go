package listquery

import (
	"strconv"
	"strings"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the stored type of a filterable field.
type Kind int

const (
	String Kind = iota
	Number
	Date
	ObjectID
	Bool
)

// Fields maps filterable paths to their kinds. Paths not listed are
// compared as strings.
type Fields map[string]Kind

var mongoOps = map[Op]string{
	OpGt:  "$gt",
	OpGte: "$gte",
	OpLt:  "$lt",
	OpLte: "$lte",
	OpIn:  "$in",
}

// Filter builds the $match document for q's conditions. Several conditions on
// one field merge into one operator document, so price[gt]=10&price[lte]=50
// becomes {price: {$gt: 10, $lte: 50}}.
func (q Query) Filter(fields Fields) (bson.M, error) {
	out := bson.M{}
	for _, c := range q.Conditions {
		kind := fields[c.Field]
		vals := make([]any, 0, len(c.Values))
		for _, raw := range c.Values {
			v, err := cast(kind, raw)
			if err != nil {
				return nil, apperr.BadRequest("Invalid value for %s: %s", c.Field, raw)
			}
			vals = append(vals, v)
		}

		ops, _ := out[c.Field].(bson.M)
		if ops == nil {
			ops = bson.M{}
		}
		switch {
		case c.Op == OpIn && len(vals) == 0:
			return nil, apperr.BadRequest("Invalid value for %s: empty list", c.Field)
		case c.Op == OpIn:
			ops["$in"] = appendIn(ops["$in"], vals)
		case c.Op == OpEq && len(vals) == 1:
			ops["$eq"] = vals[0]
		case c.Op == OpEq:
			ops["$in"] = appendIn(ops["$in"], vals)
		default:
			if len(vals) == 0 {
				continue
			}
			ops[mongoOps[c.Op]] = vals[len(vals)-1]
		}
		out[c.Field] = ops
	}
	return out, nil
}

func appendIn(existing any, vals []any) []any {
	prev, _ := existing.([]any)
	return append(prev, vals...)
}

func cast(kind Kind, raw string) (any, error) {
	switch kind {
	case Number:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		return strconv.ParseFloat(raw, 64)
	case Date:
		return inputval.ParseDate(strings.TrimSpace(raw))
	case ObjectID:
		return primitive.ObjectIDFromHex(raw)
	case Bool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

// Projection returns the $project document for q.Select, or nil when every
// field is wanted. A "-field" entry excludes it; inclusion and exclusion
// cannot be mixed.
func (q Query) Projection() (bson.D, error) {
	if len(q.Select) == 0 {
		return nil, nil
	}
	proj := bson.D{}
	include, exclude := false, false
	for _, f := range q.Select {
		if strings.HasPrefix(f, "-") {
			f = f[1:]
			if f != "_id" {
				exclude = true
			}
			if f == "" || strings.HasPrefix(f, "$") {
				return nil, apperr.BadRequest("Invalid select field: -%s", f)
			}
			proj = append(proj, bson.E{Key: f, Value: 0})
			continue
		}
		if strings.HasPrefix(f, "$") {
			return nil, apperr.BadRequest("Invalid select field: %s", f)
		}
		include = true
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	if include && exclude {
		return nil, apperr.BadRequest("Cannot mix inclusion and exclusion in select")
	}
	return proj, nil
}

// SortSpec returns the $sort document for q.Sort, falling back to def. An
// _id tiebreak is appended so paging over equal keys is stable.
func (q Query) SortSpec(def string) bson.D {
	keys := q.Sort
	if len(keys) == 0 && def != "" {
		keys = []string{def}
	}
	spec := bson.D{}
	seen := map[string]bool{}
	for _, k := range keys {
		dir := 1
		if strings.HasPrefix(k, "-") {
			dir = -1
			k = k[1:]
		}
		if k == "" || strings.HasPrefix(k, "$") || seen[k] {
			continue
		}
		seen[k] = true
		spec = append(spec, bson.E{Key: k, Value: dir})
	}
	if !seen["_id"] {
		spec = append(spec, bson.E{Key: "_id", Value: 1})
	}
	return spec
}

// wants reports whether field survives the projection.
func wants(proj bson.D, field string) bool {
	if len(proj) == 0 {
		return true
	}
	inclusion := false
	for _, e := range proj {
		if e.Value == 1 {
			inclusion = true
		}
	}
	for _, e := range proj {
		if e.Key == field || strings.HasPrefix(e.Key, field+".") {
			return inclusion
		}
	}
	return !inclusion
}
