package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// --- Mocks ---

type mockPoints struct {
	upsertReq  *pb.UpsertPoints
	upsertResp *pb.PointsOperationResponse
	upsertErr  error
	searchReq  *pb.SearchPoints
	searchResp *pb.SearchResponse
	searchErr  error
}

func (m *mockPoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.upsertReq = in
	return m.upsertResp, m.upsertErr
}
func (m *mockPoints) Search(_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.searchReq = in
	return m.searchResp, m.searchErr
}

type mockCollections struct {
	listResp   *pb.ListCollectionsResponse
	listErr    error
	createResp *pb.CollectionOperationResponse
	createErr  error
	deleteResp *pb.CollectionOperationResponse
	deleteErr  error
	created    int
	deleted    int
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return m.listResp, m.listErr
}
func (m *mockCollections) Create(_ context.Context, _ *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created++
	return m.createResp, m.createErr
}
func (m *mockCollections) Delete(_ context.Context, _ *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.deleted++
	return m.deleteResp, m.deleteErr
}

func listWith(names ...string) *pb.ListCollectionsResponse {
	cols := make([]*pb.CollectionDescription, len(names))
	for i, n := range names {
		cols[i] = &pb.CollectionDescription{Name: n}
	}
	return &pb.ListCollectionsResponse{Collections: cols}
}

// --- Tests ---

func TestCloseNilConn(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "claims")
	if err := vs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestEnsureCollection_AlreadyExists(t *testing.T) {
	cols := &mockCollections{listResp: listWith("claims")}
	vs := NewWithClients(&mockPoints{}, cols, "claims")
	if err := vs.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created != 0 {
		t.Fatal("should not create existing collection")
	}
}

func TestEnsureCollection_Creates(t *testing.T) {
	cols := &mockCollections{
		listResp:   listWith(),
		createResp: &pb.CollectionOperationResponse{Result: true},
	}
	vs := NewWithClients(&mockPoints{}, cols, "claims")
	if err := vs.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created != 1 {
		t.Fatalf("created %d times", cols.created)
	}
}

func TestEnsureCollection_ListError(t *testing.T) {
	cols := &mockCollections{listErr: errors.New("rpc fail")}
	vs := NewWithClients(&mockPoints{}, cols, "claims")
	if err := vs.EnsureCollection(context.Background(), 384); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecreateCollection_DropsExisting(t *testing.T) {
	cols := &mockCollections{
		listResp:   listWith("claims"),
		deleteResp: &pb.CollectionOperationResponse{Result: true},
		createResp: &pb.CollectionOperationResponse{Result: true},
	}
	vs := NewWithClients(&mockPoints{}, cols, "claims")
	if err := vs.RecreateCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.deleted != 1 || cols.created != 1 {
		t.Fatalf("deleted=%d created=%d", cols.deleted, cols.created)
	}
}

func TestRecreateCollection_FreshStart(t *testing.T) {
	cols := &mockCollections{
		listResp:   listWith("other"),
		createResp: &pb.CollectionOperationResponse{Result: true},
	}
	vs := NewWithClients(&mockPoints{}, cols, "claims")
	if err := vs.RecreateCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.deleted != 0 || cols.created != 1 {
		t.Fatalf("deleted=%d created=%d", cols.deleted, cols.created)
	}
}

func TestUpsert_PayloadTypes(t *testing.T) {
	pts := &mockPoints{upsertResp: &pb.PointsOperationResponse{}}
	vs := NewWithClients(pts, &mockCollections{}, "claims")

	rec := ClaimRecord{
		ID:        "2b2d1d77-0000-5000-8000-000000000001",
		Embedding: []float32{0.1, 0.2},
		Payload: map[string]any{
			"claim_status":   "APPROVED",
			"amount_insured": 123.456,
			"patient_age":    42,
		},
	}
	if err := vs.Upsert(context.Background(), []ClaimRecord{rec}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	payload := pts.upsertReq.GetPoints()[0].GetPayload()
	if payload["claim_status"].GetStringValue() != "APPROVED" {
		t.Fatal("status should be a string value")
	}
	if payload["amount_insured"].GetDoubleValue() != 123.456 {
		t.Fatal("amount should be a double value at full precision")
	}
	if payload["patient_age"].GetIntegerValue() != 42 {
		t.Fatal("age should be an integer value")
	}
}

func TestUpsert_Empty(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "claims")
	if err := vs.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert should be a no-op: %v", err)
	}
}

func TestUpsert_Error(t *testing.T) {
	pts := &mockPoints{upsertErr: errors.New("rpc fail")}
	vs := NewWithClients(pts, &mockCollections{}, "claims")
	err := vs.Upsert(context.Background(), []ClaimRecord{{ID: "x"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchFiltered_BuildsFilter(t *testing.T) {
	pts := &mockPoints{searchResp: &pb.SearchResponse{}}
	vs := NewWithClients(pts, &mockCollections{}, "claims")

	_, err := vs.SearchFiltered(context.Background(), []float32{0.5}, 1000, map[string]string{"claim_status": "APPROVED"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if pts.searchReq.GetLimit() != 1000 {
		t.Fatalf("limit: %d", pts.searchReq.GetLimit())
	}
	must := pts.searchReq.GetFilter().GetMust()
	if len(must) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(must))
	}
	field := must[0].GetField()
	if field.GetKey() != "claim_status" || field.GetMatch().GetKeyword() != "APPROVED" {
		t.Fatalf("bad condition: %v", field)
	}
}

func TestSearchFiltered_NoFilter(t *testing.T) {
	pts := &mockPoints{searchResp: &pb.SearchResponse{}}
	vs := NewWithClients(pts, &mockCollections{}, "claims")
	if _, err := vs.SearchFiltered(context.Background(), []float32{0.5}, 5, nil); err != nil {
		t.Fatalf("search: %v", err)
	}
	if pts.searchReq.GetFilter() != nil {
		t.Fatal("expected no filter")
	}
}

func TestSearchFiltered_ResultMapping(t *testing.T) {
	pts := &mockPoints{searchResp: &pb.SearchResponse{
		Result: []*pb.ScoredPoint{
			{
				Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "u1"}},
				Score: 0.91,
				Payload: map[string]*pb.Value{
					"description":    {Kind: &pb.Value_StringValue{StringValue: "Claim from KLINIK AZYAN"}},
					"claim_id":       {Kind: &pb.Value_StringValue{StringValue: "claim_0"}},
					"claim_status":   {Kind: &pb.Value_StringValue{StringValue: "APPROVED"}},
					"amount_insured": {Kind: &pb.Value_DoubleValue{DoubleValue: 123.456}},
					"patient_age":    {Kind: &pb.Value_IntegerValue{IntegerValue: 42}},
				},
			},
		},
	}}
	vs := NewWithClients(pts, &mockCollections{}, "claims")

	results, err := vs.SearchFiltered(context.Background(), []float32{0.5}, 5, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	r := results[0]
	if r.ID != "u1" || r.ClaimID != "claim_0" {
		t.Fatalf("ids: %+v", r)
	}
	if r.Description != "Claim from KLINIK AZYAN" {
		t.Fatalf("description: %q", r.Description)
	}
	if r.Meta["amount_insured"] != "123.456" {
		t.Fatalf("amount meta: %q", r.Meta["amount_insured"])
	}
	if r.Meta["patient_age"] != "42" {
		t.Fatalf("age meta: %q", r.Meta["patient_age"])
	}
}

func TestSearchFiltered_Error(t *testing.T) {
	pts := &mockPoints{searchErr: errors.New("unavailable")}
	vs := NewWithClients(pts, &mockCollections{}, "claims")
	if _, err := vs.SearchFiltered(context.Background(), []float32{0.5}, 5, nil); err == nil {
		t.Fatal("expected error")
	}
}
