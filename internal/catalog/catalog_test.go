// Copyright 2026 shiwenhan
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `
helper: |
  ledger 分类: ["Expenses:Food:Restaurant", "Expenses:Shopping:Daily"]
tables:
  - name: transactions
    description: contains all the transactions
    columns:
      - name: id
        type: integer
        description: The unique identifier for the transaction
      - name: amount
        type: numeric
        description: The amount of the transaction
  - name: orders
    description: order headers
    columns:
      - name: order_id
        type: integer
        description: order id
`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeTestCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"transactions", "orders"}, c.TableNames())
	assert.Contains(t, c.Helper, "Expenses:Food:Restaurant")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCatalog_Get_CaseInsensitive(t *testing.T) {
	c, err := Load(writeTestCatalog(t))
	require.NoError(t, err)

	tbl, ok := c.Get("Transactions")
	require.True(t, ok)
	// 返回目录中的原始大小写
	assert.Equal(t, "transactions", tbl.Name)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTableSchema_Describe(t *testing.T) {
	c, err := Load(writeTestCatalog(t))
	require.NoError(t, err)
	tbl, _ := c.Get("transactions")
	desc := tbl.Describe()
	assert.Contains(t, desc, "Table: transactions")
	assert.Contains(t, desc, "amount (numeric)")
}
