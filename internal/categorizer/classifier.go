package categorizer

import (
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// Classifier wraps a Table to tag transactions with their category.
type Classifier struct {
	table  *Table
	logger logging.Logger
}

// NewClassifier creates a Classifier over table. A nil logger falls back to
// the package default.
func NewClassifier(table *Table, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if table == nil {
		table = &Table{}
	}
	return &Classifier{table: table, logger: logger}
}

// Table returns the classification table in use.
func (c *Classifier) Table() *Table {
	return c.table
}

// Classify returns tx tagged with its matching category.
func (c *Classifier) Classify(tx models.Transaction) models.ClassifiedTransaction {
	category, keyword := c.table.match(tx.Description)
	if category == models.Unclassified {
		c.logger.Debug("No keyword matched transaction",
			logging.Field{Key: logging.FieldDescription, Value: tx.Description})
	} else {
		c.logger.Debug("Transaction classified",
			logging.Field{Key: logging.FieldDescription, Value: tx.Description},
			logging.Field{Key: logging.FieldKeyword, Value: keyword},
			logging.Field{Key: logging.FieldCategory, Value: category})
	}

	return models.ClassifiedTransaction{Transaction: tx, Category: category}
}

// ClassifyAll classifies every transaction, preserving order.
func (c *Classifier) ClassifyAll(txs []models.Transaction) []models.ClassifiedTransaction {
	out := make([]models.ClassifiedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = c.Classify(tx)
	}
	return out
}
