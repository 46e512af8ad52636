package wallet

import (
	"context"
)

// ListQuests returns all quests in display order.
func (service *Service) ListQuests(ctx context.Context) ([]Quest, error) {
	return service.store.ListQuests(ctx)
}

// QuestProgress returns the caller's per-quest progress rows.
func (service *Service) QuestProgress(ctx context.Context, userID string) ([]QuestProgress, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	return service.store.ListQuestProgress(ctx, userID)
}

// CompleteQuest claims a quest the platform has already tracked progress
// for, exactly once, and credits its reward. Completion is a conditional
// update on the incomplete progress row; the reward is only written when
// this call flipped the row, so two racing requests cannot double-credit.
func (service *Service) CompleteQuest(ctx context.Context, userID string, questID string) (int64, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return 0, err
	}
	questID, err = validateID(questID, ErrInvalidQuestID)
	if err != nil {
		return 0, err
	}
	var reward int64
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		progress, err := transactionStore.GetQuestProgress(ctx, userID, questID)
		if err != nil {
			return err
		}
		if progress.Completed {
			return ErrQuestUnavailable
		}
		completed, err := transactionStore.MarkQuestCompleted(ctx, userID, questID, service.nowFn())
		if err != nil {
			return err
		}
		if !completed {
			return ErrQuestUnavailable
		}
		quest, err := transactionStore.GetQuest(ctx, questID)
		if err != nil {
			return err
		}
		reward = quest.Reward
		if reward == 0 {
			return nil
		}
		return transactionStore.InsertEntry(ctx, Entry{
			UserID:         userID,
			Type:           EntryCredit,
			Amount:         reward,
			Ref:            RefQuestReward,
			MetadataJSON:   metadataFor(map[string]string{"quest_id": questID}),
			CreatedUnixUTC: service.nowFn(),
		})
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCompleteQuest,
		UserID:    userID,
		Amount:    reward,
		Ref:       RefQuestReward,
		Error:     operationError,
	})
	if operationError != nil {
		return 0, operationError
	}
	return reward, nil
}
