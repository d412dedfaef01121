// Copyright 2025 Kadir Pekel
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

package version

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agplIdentifier = "// SPDX-License-Identifier: AGPL-3.0"

// agplFiles carry code licensed under AGPL-3.0 and must keep that notice.
var agplFiles = []string{
	"pkg/config/config.go",
	"pkg/config/provider/file.go",
	"pkg/config/schema.go",
	"pkg/httpclient/parsers.go",
	"pkg/model/openai/config.go",
	"pkg/model/openai/errors.go",
	"pkg/model/openai/openai.go",
	"pkg/model/openai/types.go",
	"pkg/server/card.go",
	"pkg/server/http.go",
	"pkg/tool/functiontool/schema.go",
}

func TestLicenseHeaders(t *testing.T) {
	root := filepath.Join("..", "..")

	for _, rel := range agplFiles {
		t.Run(rel, func(t *testing.T) {
			f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
			require.NoError(t, err)
			defer f.Close()

			sc := bufio.NewScanner(f)
			require.True(t, sc.Scan())
			assert.Equal(t, agplIdentifier, sc.Text())
			require.True(t, sc.Scan())
			assert.True(t, strings.HasPrefix(sc.Text(), "// Copyright "))
		})
	}
}
