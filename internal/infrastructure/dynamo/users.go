package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-user-accounts/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table. Email and
// phone uniqueness is enforced through claim rows in the uniques table.
type UserRepo struct {
	client       API
	tableName    string
	uniquesTable string
}

func NewUserRepo(client API, tableName, uniquesTable string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, uniquesTable: uniquesTable}
}

// Create writes the user and both uniqueness claims in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			r.claim(attrEmail, u.Email, u.UserID),
			r.claim(attrPhoneNumber, u.PhoneNumber, u.UserID),
		},
	})
	if err != nil {
		if cerr := conflictFromCancel(err); cerr != nil {
			return cerr
		}
		return domain.Unavailable("dynamo create user", err)
	}
	return nil
}

func (r *UserRepo) claim(field, value, userID string) types.TransactWriteItem {
	return types.TransactWriteItem{Put: &types.Put{
		TableName: aws.String(r.uniquesTable),
		Item: map[string]types.AttributeValue{
			attrUniqueKey: &types.AttributeValueMemberS{Value: uniqueKey(field, value)},
			attrUserID:    &types.AttributeValueMemberS{Value: userID},
		},
		ConditionExpression: aws.String("attribute_not_exists(unique_key)"),
	}}
}

func (r *UserRepo) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrUserID, userID),
	})
	if err != nil {
		return nil, domain.Unavailable("dynamo get user", err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, domain.Unavailable("dynamo unmarshal user", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, attrEmail, email)
}

func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.queryGSI(ctx, indexPhone, attrPhoneNumber, phone)
}

// ListAll scans the whole table, following LastEvaluatedKey until exhausted.
func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	users := []domain.User{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, domain.Unavailable("dynamo scan users", err)
		}
		var page []domain.User
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, domain.Unavailable("dynamo unmarshal users", err)
		}
		users = append(users, page...)
	}
	return users, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, domain.Unavailable("dynamo query "+index, err)
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrNotFound
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, domain.Unavailable("dynamo unmarshal user", err)
	}
	return &u, nil
}
