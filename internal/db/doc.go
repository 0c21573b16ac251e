// Package db turns user-supplied connection settings into pgx connection
// pools.
//
// It parses URI and ADO.NET connection strings, resolves parameters from
// flags, environment and xmlload.yaml, and opens pools for each supported
// authentication method: password, AWS RDS IAM tokens, Azure Entra ID tokens
// and Google Cloud SQL IAM through the Cloud SQL dialer.
package db
