package repository

import (
	"context"
	"time"

	"maibpay/internal/domain/entities"
	"maibpay/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName = "payments"
	paymentsStatusIndex      = "status-index"
)

type transactionRecordItem struct {
	TransactionID  string `dynamodbav:"transaction_id"`
	GatewayURL     string `dynamodbav:"gateway_url"`
	State          string `dynamodbav:"state"`
	ProcessStartAt string `dynamodbav:"process_start_at"`
}

type paymentItem struct {
	ID          string                 `dynamodbav:"id"`
	PayerID     string                 `dynamodbav:"payer_id"`
	PayableID   string                 `dynamodbav:"payable_id"`
	Amount      float64                `dynamodbav:"amount"`
	Description string                 `dynamodbav:"description"`
	ClientIP    string                 `dynamodbav:"client_ip,omitempty"`
	Status      string                 `dynamodbav:"status"`
	Detail      *transactionRecordItem `dynamodbav:"detail,omitempty"`
	CreatedAt   string                 `dynamodbav:"created_at"`
	UpdatedAt   string                 `dynamodbav:"updated_at"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: status-index (PK: status) — used by the reconciliation sweep

type PaymentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client, tableName string) *PaymentDynamoRepository {
	if tableName == "" {
		tableName = getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName)
	}
	return &PaymentDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Payment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) Update(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Payment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) ListByStatus(ctx context.Context, status entities.PaymentStatus) ([]entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentsStatusIndex),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.Payment, 0, len(out.Items))
	for _, raw := range out.Items {
		var it paymentItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromPaymentItem(it))
	}
	return items, nil
}

func toPaymentItem(p entities.Payment) paymentItem {
	it := paymentItem{
		ID:          p.ID,
		PayerID:     p.PayerID,
		PayableID:   p.PayableID,
		Amount:      p.Amount,
		Description: p.Description,
		ClientIP:    p.ClientIP,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if p.Detail != nil {
		it.Detail = &transactionRecordItem{
			TransactionID:  p.Detail.TransactionID,
			GatewayURL:     p.Detail.GatewayURL,
			State:          string(p.Detail.State),
			ProcessStartAt: p.Detail.ProcessStartAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return it
}

func fromPaymentItem(it paymentItem) entities.Payment {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	p := entities.Payment{
		ID:          it.ID,
		PayerID:     it.PayerID,
		PayableID:   it.PayableID,
		Amount:      it.Amount,
		Description: it.Description,
		ClientIP:    it.ClientIP,
		Status:      entities.PaymentStatus(it.Status),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if it.Detail != nil {
		processStartAt, _ := time.Parse(time.RFC3339Nano, it.Detail.ProcessStartAt)
		p.Detail = &entities.TransactionRecord{
			TransactionID:  it.Detail.TransactionID,
			GatewayURL:     it.Detail.GatewayURL,
			State:          entities.TransactionState(it.Detail.State),
			ProcessStartAt: processStartAt,
		}
	}
	return p
}
