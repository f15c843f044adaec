package main

import (
	"fmt"
	"strings"
)

// crmSchema is the process-wide description of the CRM tables and their
// relationships. It is embedded in every SQL generation prompt and mirrored
// by the DDL in seed.go.
const crmSchema = `Tables and their relationships:

ordertab (order_id, client_id, customer_id, lead_id, status, type, created, updated, deleted)
- Links to customer through customer_id
- Links to lead through lead_id

customer (customer_id, client_id, name, email, phone, income_group, marital_status, source)
- Referenced by ordertab

lead (lead_id, client_id, user_id, name, email, phone, status, source, income)
- Referenced by ordertab
- Has followups in leadfollowup

leadfollowup (followup_id, lead_id, user_id, notes, created)
- Follow-up activity for leads

product (product_id, client_id, name, price, sale_commission, status, type)
- Used in order_product_mapping

order_product_mapping (id, order_id, product_id, product_quantity, rate)
- Links orders to products

bizuser (user_id, client_id, first_name, last_name, email)
- Sales users referenced by lead.user_id`

// crmTables lists the table names covered by crmSchema, in dependency order.
var crmTables = []string{
	"bizuser",
	"customer",
	"lead",
	"leadfollowup",
	"product",
	"ordertab",
	"order_product_mapping",
}

const sqlSystemPrompt = "You are a SQL expert. Return ONLY the SQL query without any markdown formatting or explanations."

// BuildSQLPrompt composes the generation request for one attempt. It is a
// pure function of the question, the attempt counter, and the fixed schema:
// no prior attempt's error is threaded back in, only the counter telling the
// model to vary its output.
func BuildSQLPrompt(question string, attempt, maxAttempts int) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Given this database schema:
%s

Important notes:
1. Sample data is from Jan-Mar 2024, use this date range for "current" queries
2. Use proper JOIN conditions and handle NULL values
3. For revenue calculations, use product_quantity * rate
4. Always check deleted = false or IS NULL where applicable
5. Use CAST for decimal calculations

This is attempt %d of %d.
If previous attempts failed, generate a different variation of the query.

Convert this business question to PostgreSQL (return ONLY the SQL): %s

Important schema and PostgreSQL notes:
- User table is named 'bizuser' (not 'users')
- User fields are first_name, last_name (not name)
- Lead status values are: NEW, IN_PROGRESS, QUALIFIED, CONVERTED
- Order status values are: NEW, IN_PROGRESS, COMPLETED, DELIVERED
- For decimal calculations, use CAST(value AS numeric(10,2))
- For aggregations with decimals, use CAST(SUM/AVG as numeric(10,2))`,
		crmSchema, attempt, maxAttempts, question)

	if strings.Contains(strings.ToLower(question), "this month") {
		b.WriteString("\nNote: Use January 2024 as 'this month' for the sample data.")
	}

	return b.String()
}
