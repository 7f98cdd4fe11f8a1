package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the collection holding product documents
const CollectionName = "products"

type mongoProductRepository struct {
	collection *mongo.Collection
}

// Connect opens a client for uri and checks the primary is reachable
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo is unavailable: %w", err)
	}

	return client, nil
}

// NewMongoProductRepository returns a repository backed by the products
// collection of db
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(CollectionName)}
}

func (r *mongoProductRepository) FindAll(ctx context.Context, page *domain.Page) (domain.Products, error) {
	return r.findMany(ctx, bson.D{}, page)
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	return &product, nil
}

func (r *mongoProductRepository) FindByName(ctx context.Context, name string, page *domain.Page) (domain.Products, error) {
	return r.findMany(ctx, bson.D{{Key: "name", Value: name}}, page)
}

func (r *mongoProductRepository) FindByCategory(ctx context.Context, category string, page *domain.Page) (domain.Products, error) {
	return r.findMany(ctx, bson.D{{Key: "categories", Value: category}}, page)
}

// FindByAttribute matches products with an attribute element equal to attr
func (r *mongoProductRepository) FindByAttribute(ctx context.Context, attr map[string]string, page *domain.Page) (domain.Products, error) {
	return r.findMany(ctx, attributeFilter(attr), page)
}

func (r *mongoProductRepository) Save(ctx context.Context, product *domain.Product) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: product.ID}},
		normalize(product),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save product %s: %w", product.ID, err)
	}
	return nil
}

func (r *mongoProductRepository) SaveAll(ctx context.Context, products domain.Products) error {
	if len(products) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: p.ID}}).
			SetReplacement(normalize(p)).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("save %d products: %w", len(products), err)
	}
	return nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, u domain.ProductUpdate) (domain.UpdateResult, error) {
	filter := bson.D{{Key: "_id", Value: id}}

	set := updateFields(u)
	if len(set) == 0 {
		// an empty $set is rejected by the server
		n, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return domain.UpdateResult{}, fmt.Errorf("update product %s: %w", id, err)
		}
		return domain.UpdateResult{MatchedCount: n}, nil
	}

	res, err := r.collection.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return domain.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *mongoProductRepository) PushRating(ctx context.Context, id string, rating domain.Rating) (*domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "ratings", Value: rating}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("push rating to product %s: %w", id, err)
	}
	return &product, nil
}

func (r *mongoProductRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

func (r *mongoProductRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *mongoProductRepository) findMany(ctx context.Context, filter bson.D, page *domain.Page) (domain.Products, error) {
	opts := options.Find()
	if page != nil {
		opts.SetSkip(int64(page.Offset())).SetLimit(int64(page.Size))
	}

	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	products := domain.Products{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// attributeFilter matches documents with an attribute element equal to attr.
// The $elemMatch narrows the scan through the attributes index, the $expr
// rejects elements that carry keys beyond those of attr.
func attributeFilter(attr map[string]string) bson.D {
	keys := make([]string, 0, len(attr))
	for k := range attr {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	match := bson.D{}
	conds := bson.A{
		bson.D{{Key: "$eq", Value: bson.A{
			bson.D{{Key: "$size", Value: bson.D{{Key: "$objectToArray", Value: "$$a"}}}},
			len(keys),
		}}},
	}
	for _, k := range keys {
		match = append(match, bson.E{Key: k, Value: attr[k]})
		conds = append(conds, bson.D{{Key: "$eq", Value: bson.A{
			bson.D{{Key: "$getField", Value: bson.D{
				{Key: "field", Value: bson.D{{Key: "$literal", Value: k}}},
				{Key: "input", Value: "$$a"},
			}}},
			bson.D{{Key: "$literal", Value: attr[k]}},
		}}})
	}

	exact := bson.D{{Key: "$gt", Value: bson.A{
		bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$attributes", bson.A{}}}}},
			{Key: "as", Value: "a"},
			{Key: "cond", Value: bson.D{{Key: "$and", Value: conds}}},
		}}}}},
		0,
	}}}

	return bson.D{
		{Key: "attributes", Value: bson.D{{Key: "$elemMatch", Value: match}}},
		{Key: "$expr", Value: exact},
	}
}

// updateFields maps the set fields of u to a $set document
func updateFields(u domain.ProductUpdate) bson.D {
	set := bson.D{}
	if u.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *u.Name})
	}
	if u.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *u.Price})
	}
	if u.Quantity != nil {
		set = append(set, bson.E{Key: "availability.quantity", Value: *u.Quantity})
	}
	if u.Categories != nil {
		set = append(set, bson.E{Key: "categories", Value: u.Categories})
	}
	if u.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *u.Description})
	}
	if u.Attributes != nil {
		set = append(set, bson.E{Key: "attributes", Value: u.Attributes})
	}
	if u.Ratings != nil {
		set = append(set, bson.E{Key: "ratings", Value: u.Ratings})
	}
	return set
}

// normalize stores nil lists as empty arrays so $push always has an array
// to append to
func normalize(p *domain.Product) *domain.Product {
	n := p.Clone()
	if n.Categories == nil {
		n.Categories = []string{}
	}
	if n.Attributes == nil {
		n.Attributes = []map[string]string{}
	}
	if n.Ratings == nil {
		n.Ratings = []domain.Rating{}
	}
	return n
}
