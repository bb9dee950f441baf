package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/gtaquino-automatelabs/proativo-sub001/common/logger"
	"github.com/gtaquino-automatelabs/proativo-sub001/config"
	"github.com/gtaquino-automatelabs/proativo-sub001/normalize"
	"github.com/gtaquino-automatelabs/proativo-sub001/schema"
)

// Field names expected in the maintenance-records collection.
const (
	fieldID          = "id"
	fieldEquipmentID = "equipment_id"
	fieldContent     = "content"
)

// MilvusRetriever fetches maintenance records from a Milvus collection by
// equipment-ID filter expression.
type MilvusRetriever struct {
	cli        client.Client
	collection string
}

// NewMilvusRetriever connects to Milvus and returns a retriever over the
// configured collection.
func NewMilvusRetriever(ctx context.Context, cfg config.MilvusConfig) (*MilvusRetriever, error) {
	cli, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus failed, err: %w", err)
	}
	return &MilvusRetriever{cli: cli, collection: cfg.Collection}, nil
}

// Fetch queries records whose equipment_id appears in the query. Queries
// naming no equipment return no records; the answer still proceeds, it is
// just generated without supporting context.
func (r *MilvusRetriever) Fetch(ctx context.Context, query string, limit int) ([]schema.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	ids := normalize.EquipmentIDs(query)
	if len(ids) == 0 {
		return nil, nil
	}
	expr := equipmentExpr(ids)

	rs, err := r.cli.Query(ctx, r.collection, nil, expr,
		[]string{fieldID, fieldContent},
		client.WithLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("query milvus failed, err: %w", err)
	}

	var idCol, contentCol *entity.ColumnVarChar
	for _, col := range rs {
		vc, ok := col.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		switch col.Name() {
		case fieldID:
			idCol = vc
		case fieldContent:
			contentCol = vc
		}
	}
	if contentCol == nil {
		logger.Warnf("retriever: milvus query returned no content column for expr %q", expr)
		return nil, nil
	}

	contents := contentCol.Data()
	out := make([]schema.Record, 0, len(contents))
	for i, content := range contents {
		rec := schema.Record{Content: content, Source: "milvus/" + r.collection}
		if idCol != nil && i < len(idCol.Data()) {
			rec.ID = idCol.Data()[i]
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases the Milvus connection.
func (r *MilvusRetriever) Close() error {
	return r.cli.Close()
}

func equipmentExpr(ids []string) string {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, `"`+strings.ReplaceAll(id, `"`, ``)+`"`)
	}
	return fmt.Sprintf("%s in [%s]", fieldEquipmentID, strings.Join(quoted, ", "))
}
