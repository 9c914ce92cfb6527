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

package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dbchat/internal/schema"
)

func TestExecutionResult_Err(t *testing.T) {
	ok := Success("SELECT 1", &schema.ResultTable{Columns: []string{"x"}})
	assert.False(t, ok.Err())
	assert.Equal(t, "SELECT 1", ok.SQL)

	bad := Failure("SELECT nope", `column "nope" does not exist`)
	assert.True(t, bad.Err())
	assert.Contains(t, bad.Message, "does not exist")

	var missing *ExecutionResult
	assert.True(t, missing.Err())
}
