package dynamo

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-user-accounts/internal/domain"
)

// Attribute and index names shared by the repos and Bootstrap.
const (
	attrUserID      = "user_id"
	attrEmail       = "email"
	attrPhoneNumber = "phone_number"
	attrUniqueKey   = "unique_key"

	indexEmail = "email-index"
	indexPhone = "phone_number-index"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// uniqueKey is the primary key of a user_uniques row claiming value for field.
func uniqueKey(field, value string) string {
	return field + "#" + value
}

// conflictFromCancel maps a cancelled user-creation transaction to a
// Conflict naming the claim that failed. Item order matches UserRepo.Create.
func conflictFromCancel(err error) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	for i, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case 2:
			return domain.WrapError(domain.ErrConflict, domain.MsgPhoneExists, err)
		default:
			return domain.WrapError(domain.ErrConflict, domain.MsgEmailExists, err)
		}
	}
	return nil
}
