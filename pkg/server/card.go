// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/hector-samples/pkg/config"
)

const (
	providerOrg = "Hector Samples"
	providerURL = "https://github.com/kadirpekel/hector-samples"
)

// BuildAgentCard creates the agent card advertised at the well-known path.
func BuildAgentCard(cfg *config.Config) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               cfg.Agent.Name,
		Description:        cfg.Agent.Description,
		URL:                cfg.Server.URL(),
		Version:            cfg.Agent.Version,
		ProtocolVersion:    "1.0",
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills:             buildAgentSkills(cfg.Agent.Skills),
		Capabilities: a2a.AgentCapabilities{
			Streaming:              false,
			PushNotifications:      false,
			StateTransitionHistory: false,
		},
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Provider: &a2a.AgentProvider{
			Org: providerOrg,
			URL: providerURL,
		},
	}
}

func buildAgentSkills(skills []config.SkillConfig) []a2a.AgentSkill {
	out := make([]a2a.AgentSkill, 0, len(skills))
	for _, skill := range skills {
		out = append(out, a2a.AgentSkill{
			ID:          skill.ID,
			Name:        skill.Name,
			Description: skill.Description,
			Tags:        skill.Tags,
			Examples:    skill.Examples,
		})
	}
	return out
}
