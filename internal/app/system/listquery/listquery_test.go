package listquery

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustParse(t *testing.T, raw string) Query {
	t.Helper()
	v, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("ParseQuery(%q): %v", raw, err)
	}
	q, err := Parse(v)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return q
}

func TestParse_Reserved(t *testing.T) {
	q := mustParse(t, "select=portName,portType&sort=-createdAt,portName&page=2&limit=10")

	if !reflect.DeepEqual(q.Select, []string{"portName", "portType"}) {
		t.Errorf("Select = %v", q.Select)
	}
	if !reflect.DeepEqual(q.Sort, []string{"-createdAt", "portName"}) {
		t.Errorf("Sort = %v", q.Sort)
	}
	if q.Page != 2 || q.Limit != 10 {
		t.Errorf("Page, Limit = %d, %d; want 2, 10", q.Page, q.Limit)
	}
	if len(q.Conditions) != 0 {
		t.Errorf("reserved keys leaked into conditions: %+v", q.Conditions)
	}
}

func TestParse_PagingDefaults(t *testing.T) {
	tests := []struct {
		raw       string
		page, lim int
	}{
		{"", 1, 50},
		{"page=abc&limit=xyz", 1, 50},
		{"page=0&limit=-5", 1, 50},
		{"page=3", 3, 50},
	}
	for _, tt := range tests {
		q := mustParse(t, tt.raw)
		if q.Page != tt.page || q.Limit != tt.lim {
			t.Errorf("%q: Page, Limit = %d, %d; want %d, %d", tt.raw, q.Page, q.Limit, tt.page, tt.lim)
		}
	}
}

func TestParse_Operators(t *testing.T) {
	q := mustParse(t, "price[gt]=10&price[lte]=50&method[in]=Phone,Email&role=Executor&owner[name]=x")

	want := []Condition{
		{Field: "method", Op: OpIn, Values: []string{"Phone", "Email"}},
		{Field: "owner.name", Op: OpEq, Values: []string{"x"}},
		{Field: "price", Op: OpGt, Values: []string{"10"}},
		{Field: "price", Op: OpLte, Values: []string{"50"}},
		{Field: "role", Op: OpEq, Values: []string{"Executor"}},
	}
	if !reflect.DeepEqual(q.Conditions, want) {
		t.Errorf("Conditions =\n%+v\nwant\n%+v", q.Conditions, want)
	}
}

func TestParse_MalformedKeys(t *testing.T) {
	tests := []string{
		"price[gt=10",
		"[gt]=10",
		"$where=1",
		"a[$ne]=1",
		"a[b]c=1",
		"a.$where=1",
		"a..b=1",
		".a=1",
		"a[b.$ne]=1",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			v, err := url.ParseQuery(raw)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			_, err = Parse(v)
			if !apperr.Is(err, apperr.KindBadRequest) {
				t.Errorf("Parse(%q) err = %v, want bad request", raw, err)
			}
		})
	}
}

func TestParse_DottedPaths(t *testing.T) {
	q := mustParse(t, "owner.name=x&dates.start[gte]=2021-01-01")

	want := []Condition{
		{Field: "dates.start", Op: OpGte, Values: []string{"2021-01-01"}},
		{Field: "owner.name", Op: OpEq, Values: []string{"x"}},
	}
	if !reflect.DeepEqual(q.Conditions, want) {
		t.Errorf("Conditions =\n%+v\nwant\n%+v", q.Conditions, want)
	}
}

func TestFilter_RangeOnNumber(t *testing.T) {
	q := mustParse(t, "price[gt]=10&price[lte]=50")
	got, err := q.Filter(Fields{"price": Number})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := bson.M{"price": bson.M{"$gt": int64(10), "$lte": int64(50)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestFilter_Kinds(t *testing.T) {
	id := primitive.NewObjectID()
	q := mustParse(t, "portfolio="+id.Hex()+"&date[gte]=2021-01-01&method[in]=Phone,Email&active=true&portName=Acme")
	got, err := q.Filter(Fields{
		"portfolio": ObjectID,
		"date":      Date,
		"active":    Bool,
	})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}

	want := bson.M{
		"portfolio": bson.M{"$eq": id},
		"date":      bson.M{"$gte": time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		"method":    bson.M{"$in": []any{"Phone", "Email"}},
		"active":    bson.M{"$eq": true},
		"portName":  bson.M{"$eq": "Acme"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter =\n%v\nwant\n%v", got, want)
	}
}

func TestFilter_RepeatedEqualityBecomesIn(t *testing.T) {
	q := mustParse(t, "role=A&role=B")
	got, err := q.Filter(nil)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := bson.M{"role": bson.M{"$in": []any{"A", "B"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestFilter_CastFailure(t *testing.T) {
	q := mustParse(t, "price[gt]=cheap")
	_, err := q.Filter(Fields{"price": Number})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("err = %v, want bad request", err)
	}
}

func TestFilter_EmptyInList(t *testing.T) {
	tests := []string{
		"method[in]=",
		"method[in]=,,",
		"method[in]=&method[in]=,",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			q := mustParse(t, raw)
			got, err := q.Filter(nil)
			if !apperr.Is(err, apperr.KindBadRequest) {
				t.Errorf("Filter = %v, err = %v; want bad request", got, err)
			}
		})
	}
}

func TestProjection(t *testing.T) {
	tests := []struct {
		raw     string
		want    bson.D
		wantErr bool
	}{
		{"", nil, false},
		{"select=portName,portType", bson.D{{Key: "portName", Value: 1}, {Key: "portType", Value: 1}}, false},
		{"select=portName -_id", bson.D{{Key: "portName", Value: 1}, {Key: "_id", Value: 0}}, false},
		{"select=-portDescription", bson.D{{Key: "portDescription", Value: 0}}, false},
		{"select=portName,-portType", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := mustParse(t, tt.raw).Projection()
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindBadRequest) {
					t.Errorf("err = %v, want bad request", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Projection: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Projection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortSpec(t *testing.T) {
	tests := []struct {
		raw  string
		def  string
		want bson.D
	}{
		{"", "portName", bson.D{{Key: "portName", Value: 1}, {Key: "_id", Value: 1}}},
		{"sort=-date,subject", "date", bson.D{{Key: "date", Value: -1}, {Key: "subject", Value: 1}, {Key: "_id", Value: 1}}},
		{"sort=-_id", "date", bson.D{{Key: "_id", Value: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := mustParse(t, tt.raw).SortSpec(tt.def)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortSpec = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPipeline_StagesAndScope(t *testing.T) {
	portID := primitive.NewObjectID()
	q := mustParse(t, "role=Executor&portfolio="+primitive.NewObjectID().Hex()+"&page=3&limit=5")
	pipe, err := Pipeline(Spec{
		Fields:      Fields{"portfolio": ObjectID},
		DefaultSort: "createdAt",
		Scope:       bson.M{"portfolio": portID},
		Populate: []Populate{
			{Field: "portfolio", From: "portfolios"},
			{Field: "contact", From: "contacts"},
		},
	}, q)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}

	stages := make([]string, 0, len(pipe))
	for _, st := range pipe {
		stages = append(stages, st[0].Key)
	}
	want := []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$unwind", "$lookup", "$unwind"}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}

	match := pipe[0][0].Value.(bson.M)
	if match["portfolio"] != portID {
		t.Errorf("scope did not override the caller filter: %v", match["portfolio"])
	}
	if pipe[2][0].Value != int64(10) {
		t.Errorf("$skip = %v, want 10", pipe[2][0].Value)
	}
}

func TestPipeline_HugePageSkipStaysPositive(t *testing.T) {
	q := mustParse(t, "page=9223372036854775807")
	pipe, err := Pipeline(Spec{DefaultSort: "createdAt"}, q)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	skip, ok := pipe[2][0].Value.(int64)
	if !ok || skip < 0 {
		t.Errorf("$skip = %v, want a non-negative int64", pipe[2][0].Value)
	}
}

func TestPipeline_HidesAndSkipsUnselected(t *testing.T) {
	q := mustParse(t, "select=portName")
	pipe, err := Pipeline(Spec{
		DefaultSort: "portName",
		Populate: []Populate{
			{Field: "manager", From: "users", Hide: []string{"password"}},
		},
	}, q)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	for _, st := range pipe {
		if st[0].Key == "$lookup" {
			t.Error("lookup added for a field the projection drops")
		}
	}

	pipe, err = Pipeline(Spec{
		Populate: []Populate{
			{Field: "associates", From: "users", Many: true, Hide: []string{"password"}},
		},
	}, mustParse(t, ""))
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	last := pipe[len(pipe)-1][0]
	if last.Key != "$project" {
		t.Fatalf("last stage = %s, want $project", last.Key)
	}
	want := bson.D{{Key: "associates.password", Value: 0}}
	if !reflect.DeepEqual(last.Value, want) {
		t.Errorf("hidden projection = %v, want %v", last.Value, want)
	}
	for _, st := range pipe {
		if st[0].Key == "$unwind" {
			t.Error("array populate should not unwind")
		}
	}
}
