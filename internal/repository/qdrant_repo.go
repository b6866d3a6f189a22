package repository

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/timmy/tubevault/internal/domain"
)

// QdrantConnectionConfig holds configuration for the Qdrant connection.
type QdrantConnectionConfig struct {
	Host            string
	Port            int
	Collection      string
	APIKey          string // Qdrant Cloud API key; enables TLS
	UseTLS          bool
	VectorDimension int
}

func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantRepository stores one transcript embedding per video.
type QdrantRepository struct {
	conn            *grpc.ClientConn
	pointsClient    pb.PointsClient
	collectClient   pb.CollectionsClient
	collectionName  string
	vectorDimension int
}

// NewQdrantRepository creates a QdrantRepository for local Qdrant
// (insecure) or Qdrant Cloud (TLS + API key). The gRPC connection is lazy.
func NewQdrantRepository(cfg *QdrantConnectionConfig) (*QdrantRepository, error) {
	if cfg.VectorDimension <= 0 {
		return nil, fmt.Errorf("qdrant: vector dimension must be positive")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var opts []grpc.DialOption
	if cfg.UseTLS || cfg.APIKey != "" {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS13})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &QdrantRepository{
		conn:            conn,
		pointsClient:    pb.NewPointsClient(conn),
		collectClient:   pb.NewCollectionsClient(conn),
		collectionName:  cfg.Collection,
		vectorDimension: cfg.VectorDimension,
	}, nil
}

// Close closes the gRPC connection.
func (r *QdrantRepository) Close() error {
	return r.conn.Close()
}

// Connect makes sure the collection exists and returns the repository as
// the index handle.
func (r *QdrantRepository) Connect(ctx context.Context) (VectorIndex, error) {
	if err := r.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	return r, nil
}

// EnsureCollection creates the collection (cosine distance) if it doesn't
// exist and rejects an existing one with a different vector size.
func (r *QdrantRepository) EnsureCollection(ctx context.Context) error {
	exists, err := r.collectClient.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: r.collectionName,
	})
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists.GetResult().GetExists() {
		info, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
			CollectionName: r.collectionName,
		})
		if err != nil {
			return fmt.Errorf("failed to get collection info: %w", err)
		}
		if size, ok := collectionVectorSize(info.GetResult()); ok && size != uint64(r.vectorDimension) {
			return fmt.Errorf("collection %s has vector size %d, expected %d", r.collectionName, size, r.vectorDimension)
		}
		return nil
	}

	_, err = r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(r.vectorDimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func collectionVectorSize(info *pb.CollectionInfo) (uint64, bool) {
	vectors := info.GetConfig().GetParams().GetVectorsConfig()
	if vectors == nil {
		return 0, false
	}
	if size := vectors.GetParams().GetSize(); size > 0 {
		return size, true
	}
	for _, params := range vectors.GetParamsMap().GetMap() {
		if size := params.GetSize(); size > 0 {
			return size, true
		}
	}
	return 0, false
}

// PointID maps a video id to the UUID Qdrant addresses it by. The same
// video always lands on the same point within a collection.
func PointID(collection, videoID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+videoID)).String()
}

func (r *QdrantRepository) pointID(videoID string) *pb.PointId {
	return &pb.PointId{
		PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(r.collectionName, videoID)},
	}
}

// Upsert inserts or replaces the vector of a video.
func (r *QdrantRepository) Upsert(ctx context.Context, videoID string, vector []float32, payload *domain.VideoPayload) error {
	if len(vector) != r.vectorDimension {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(vector), r.vectorDimension)
	}

	wait := true
	_, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collectionName,
		Wait:           &wait,
		Points: []*pb.PointStruct{
			{
				Id: r.pointID(videoID),
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{
						Vector: &pb.Vector{Data: vector},
					},
				},
				Payload: payloadToValues(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point for %s: %w", videoID, err)
	}
	return nil
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func payloadToValues(p *domain.VideoPayload) map[string]*pb.Value {
	return map[string]*pb.Value{
		"video_id":        stringValue(p.VideoID),
		"title":           stringValue(p.Title),
		"url":             stringValue(p.URL),
		"thumbnail":       stringValue(p.Thumbnail),
		"description":     stringValue(p.Description),
		"content":         stringValue(p.Content),
		"full_transcript": stringValue(p.FullTranscript),
		"type":            stringValue(p.Type),
	}
}

func parsePayload(payload map[string]*pb.Value) *domain.VideoPayload {
	if payload == nil {
		return nil
	}
	get := func(key string) string {
		return payload[key].GetStringValue()
	}
	return &domain.VideoPayload{
		VideoID:        get("video_id"),
		Title:          get("title"),
		URL:            get("url"),
		Thumbnail:      get("thumbnail"),
		Description:    get("description"),
		Content:        get("content"),
		FullTranscript: get("full_transcript"),
		Type:           get("type"),
	}
}

// Search returns the topK nearest points by cosine similarity, best first.
func (r *QdrantRepository) Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	resp, err := r.pointsClient.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collectionName,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{
					Fields: []string{"video_id", "title", "url", "thumbnail", "description", "content", "type"},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, scored := range resp.GetResult() {
		payload := parsePayload(scored.GetPayload())
		results[i] = SearchResult{Score: scored.GetScore(), Payload: payload}
		if payload != nil {
			results[i].VideoID = payload.VideoID
		}
	}
	return results, nil
}

// Exists reports whether a video has a point in the index.
func (r *QdrantRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	resp, err := r.pointsClient.Get(ctx, &pb.GetPoints{
		CollectionName: r.collectionName,
		Ids:            []*pb.PointId{r.pointID(videoID)},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: false},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get point for %s: %w", videoID, err)
	}
	return len(resp.GetResult()) > 0, nil
}

// Delete removes the point of a video. Deleting an absent point succeeds.
func (r *QdrantRepository) Delete(ctx context.Context, videoID string) error {
	wait := true
	_, err := r.pointsClient.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collectionName,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{r.pointID(videoID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point for %s: %w", videoID, err)
	}
	return nil
}
