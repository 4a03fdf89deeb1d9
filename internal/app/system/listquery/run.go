package listquery

import (
	"context"

	"github.com/purplesmurf1998/crm-api/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Populate replaces the reference stored at Field with the referenced
// document(s) from the From collection.
type Populate struct {
	Field string
	From  string
	// Many is set when Field holds an array of references.
	Many bool
	// Hide lists fields of the joined document that must never be returned.
	Hide []string
}

// Spec describes one list endpoint.
type Spec struct {
	Coll *mongo.Collection
	// Total is the collection whose unfiltered size drives pagination. It
	// defaults to Coll.
	Total       *mongo.Collection
	Fields      Fields
	DefaultSort string
	Populate    []Populate
	// Scope is merged over the parsed filter and wins on conflict.
	Scope bson.M
}

// Result is the list response body.
type Result struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Pagination paging.Pagination `json:"pagination"`
	Data       []bson.M          `json:"data"`
}

// Pipeline builds the aggregation for q against spec.
func Pipeline(spec Spec, q Query) (mongo.Pipeline, error) {
	filter, err := q.Filter(spec.Fields)
	if err != nil {
		return nil, err
	}
	for k, v := range spec.Scope {
		filter[k] = v
	}
	proj, err := q.Projection()
	if err != nil {
		return nil, err
	}

	pipe := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: q.SortSpec(spec.DefaultSort)}},
		{{Key: "$skip", Value: paging.StartIndex(q.Page, q.Limit)}},
		{{Key: "$limit", Value: int64(q.Limit)}},
	}
	if len(proj) > 0 {
		pipe = append(pipe, bson.D{{Key: "$project", Value: proj}})
	}

	var hidden bson.D
	for _, p := range spec.Populate {
		if !wants(proj, p.Field) {
			continue
		}
		pipe = append(pipe, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: p.From},
			{Key: "localField", Value: p.Field},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: p.Field},
		}}})
		if !p.Many {
			pipe = append(pipe, bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + p.Field},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}})
		}
		for _, h := range p.Hide {
			hidden = append(hidden, bson.E{Key: p.Field + "." + h, Value: 0})
		}
	}
	if len(hidden) > 0 {
		pipe = append(pipe, bson.D{{Key: "$project", Value: hidden}})
	}
	return pipe, nil
}

// Run executes q against spec and assembles the list response.
func Run(ctx context.Context, spec Spec, q Query) (Result, error) {
	pipe, err := Pipeline(spec, q)
	if err != nil {
		return Result{}, err
	}

	totalColl := spec.Total
	if totalColl == nil {
		totalColl = spec.Coll
	}
	total, err := totalColl.CountDocuments(ctx, bson.M{})
	if err != nil {
		return Result{}, err
	}

	cur, err := spec.Coll.Aggregate(ctx, pipe)
	if err != nil {
		return Result{}, err
	}
	defer cur.Close(ctx)

	data := []bson.M{}
	if err := cur.All(ctx, &data); err != nil {
		return Result{}, err
	}

	return Result{
		Success:    true,
		Count:      len(data),
		Pagination: paging.Compute(q.Page, q.Limit, total),
		Data:       data,
	}, nil
}

// One runs spec's pipeline with only Scope applied and returns the first
// document. Returns mongo.ErrNoDocuments when nothing matches.
func One(ctx context.Context, spec Spec) (bson.M, error) {
	pipe, err := Pipeline(spec, Query{Page: 1, Limit: 1})
	if err != nil {
		return nil, err
	}
	cur, err := spec.Coll.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, mongo.ErrNoDocuments
	}
	var doc bson.M
	if err := cur.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
